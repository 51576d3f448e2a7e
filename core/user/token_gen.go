package user

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base32"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/trezcool/somo/core"
)

// A token is "<base32 day-count>-<hmac sig>" where the sig covers the user's
// mutable state: resetting a password or verifying an email invalidates all
// previously issued tokens for that purpose.
var (
	passwordResetSalt = []byte("somo.core.user.password_reset")
	verificationSalt  = []byte("somo.core.user.email_verification")

	secretKey                     []byte
	passwordResetTimeoutDelta     time.Duration
	emailVerificationTimeoutDelta time.Duration

	nowFunc = time.Now // mockable

	// errors
	errInvalidToken = errors.New("invalid token")
	errTokenExpired = errors.New("token expired")
)

func initTokenGen(conf *core.Config) {
	secretKey = []byte(conf.SecretKey)
	passwordResetTimeoutDelta = conf.PasswordResetTimeoutDelta
	emailVerificationTimeoutDelta = conf.EmailVerificationTimeoutDelta
}

// EncodeUID base64 encodes given User ID
func EncodeUID(usr User) string {
	return base64.RawURLEncoding.EncodeToString([]byte(usr.ID))
}

// decodeUID base64 decodes given UID
func decodeUID(uid string) (string, error) {
	idBytes, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return "", err
	}
	return string(idBytes), nil
}

// makeToken generates a timed token for a given User and purpose salt.
func makeToken(usr User, salt []byte) string {
	return makeTokenWithTimestamp(usr, salt, numDaysSince2001(nowFunc()))
}

// verifyToken checks that a token for a given User and purpose salt is valid.
func verifyToken(usr User, token string, salt []byte, timeout time.Duration) error {
	if token == "" {
		return errInvalidToken
	}

	parts := strings.SplitN(token, "-", 2)
	if len(parts) < 2 {
		return errInvalidToken
	}
	tsB32 := parts[0]

	data, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(tsB32)
	if err != nil {
		return errInvalidToken
	}
	ts, err := strconv.Atoi(string(data))
	if err != nil {
		return errInvalidToken
	}

	// check that token has not been tampered with
	newToken := makeTokenWithTimestamp(usr, salt, ts)
	if subtle.ConstantTimeCompare([]byte(newToken), []byte(token)) == 0 {
		return errInvalidToken
	}

	// check that the timestamp is within limit
	if (numDaysSince2001(time.Now()) - ts) > int(timeout/(24*time.Hour)) {
		return errTokenExpired
	}
	return nil
}

func makeTokenWithTimestamp(usr User, salt []byte, ts int) string {
	tsB32 := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString([]byte(strconv.Itoa(ts)))
	return fmt.Sprintf("%s-%s", tsB32, sign(hashValue(usr, ts), salt))
}

func numDaysSince2001(t time.Time) int {
	ref := time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)
	return int(math.Ceil(t.Sub(ref).Hours() / 24))
}

func sign(val, salt []byte) string {
	key := sha256.Sum256(append(salt, secretKey...))
	h := hmac.New(sha256.New, key[:])
	h.Write(val)
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

func hashValue(usr User, ts int) []byte {
	var val bytes.Buffer
	val.WriteString(usr.ID)
	val.Write(usr.PasswordHash)
	val.WriteString(strconv.FormatBool(usr.EmailVerified))
	if !usr.LastLogin.IsZero() {
		val.WriteString(usr.LastLogin.String())
	}
	val.WriteString(strconv.Itoa(ts))
	return val.Bytes()
}
