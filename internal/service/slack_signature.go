package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"time"
)

// SlackSignatureMaxAge es la ventana máxima entre el timestamp firmado y el reloj local.
const SlackSignatureMaxAge = 5 * time.Minute

const slackSignatureVersion = "v0"

// VerifySlackSignature valida la cabecera X-Slack-Signature de un webhook contra el cuerpo crudo.
func VerifySlackSignature(signingSecret, timestamp, rawBody, providedSignature string) bool {
	return verifySlackSignatureAt(time.Now(), signingSecret, timestamp, rawBody, providedSignature)
}

func verifySlackSignatureAt(now time.Time, signingSecret, timestamp, rawBody, providedSignature string) bool {
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}
	age := now.Unix() - ts
	if age < 0 {
		age = -age
	}
	if age > int64(SlackSignatureMaxAge/time.Second) {
		return false
	}

	expected := ComputeSlackSignature(signingSecret, timestamp, rawBody)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(providedSignature)) == 1
}

// ComputeSlackSignature devuelve "v0=" + hex(HMAC-SHA256(secret, "v0:ts:body")).
func ComputeSlackSignature(signingSecret, timestamp, rawBody string) string {
	mac := hmac.New(sha256.New, []byte(signingSecret))
	mac.Write([]byte(slackSignatureVersion + ":" + timestamp + ":" + rawBody))
	return slackSignatureVersion + "=" + hex.EncodeToString(mac.Sum(nil))
}
