package tests

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	. "github.com/trezcool/somo/apps/api/echo"
	"github.com/trezcool/somo/core/user"
	emailsvc "github.com/trezcool/somo/services/email"
)

var (
	// html/template escapes "&" to "&amp;" inside href attributes
	verifyURLRegex = regexp.MustCompile(`/verify-email\?uid=([^&\s]+)&(?:amp;)?token=([^&\s"]+)`)
	resetURLRegex  = regexp.MustCompile(`/reset-password\?uid=([^&\s]+)&(?:amp;)?token=([^&\s"]+)`)
)

// lastMailToken extracts the uid and token from the last sent email.
func lastMailToken(t *testing.T, re *regexp.Regexp) (uid, token string) {
	t.Helper()
	if len(emailsvc.SentMessages) == 0 {
		t.Fatal("no mail sent")
	}
	msg := emailsvc.SentMessages[len(emailsvc.SentMessages)-1]
	m := re.FindStringSubmatch(msg.TextContent)
	if m == nil {
		t.Fatalf("mail content does not match %v:\n%s", re, msg.TextContent)
	}
	uid = m[1]
	token, err := url.QueryUnescape(m[2])
	if err != nil {
		t.Fatalf("unescaping token: %v", err)
	}
	return uid, token
}

func Test_userApi_register(t *testing.T) {
	app := setup(t)

	createUser(t, "Taken", "taken@test.cm", "FatPanda#2020", true, true)

	reqMsg := "this field is required"
	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, user.NewUser{
				Name: reqMsg, Email: reqMsg,
				Password: "password must contain at least 8 characters", PasswordConfirm: reqMsg,
			}),
		},
		{
			name: "password mismatch", wantCode: http.StatusBadRequest,
			body: marchallObj(t, user.NewUser{
				Name: "Tim", Email: "tim@test.cm", Password: "FatPanda#2020", PasswordConfirm: "FatPanda#2021",
			}),
			wantData: marchallObj(t, map[string]string{"password_confirm": "password_confirm must be equal to Password"}),
		},
		{
			name: "duplicate email", wantCode: http.StatusBadRequest,
			body: marchallObj(t, user.NewUser{
				Name: "Tim", Email: "taken@test.cm", Password: "FatPanda#2020", PasswordConfirm: "FatPanda#2020",
			}),
			wantData: marchallObj(t, map[string]string{"email": "a user with this email already exists"}),
		},
		{
			name: "registered", wantCode: http.StatusCreated,
			body: marchallObj(t, user.NewUser{
				Name: "Tim", Email: "tim@test.cm", Password: "FatPanda#2020", PasswordConfirm: "FatPanda#2020",
			}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/register"

		t.Run(tt.name, func(t *testing.T) {
			emailsvc.ClearSentMessages()

			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var usr user.User
				if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if usr.EmailVerified {
					t.Error("new accounts must start unverified")
				}
				if !usr.IsActive {
					t.Error("new accounts must be active")
				}

				// a verification mail went out
				uid, token := lastMailToken(t, verifyURLRegex)
				if uid == "" || token == "" {
					t.Error("verification mail missing uid/token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_login(t *testing.T) {
	app := setup(t)

	usr := createUser(t, "Hero", "hero@test.cm", "FatPanda#2020", true, true)
	createUser(t, "N Dog", "ndog@test.cm", "FatPanda#2020", true, false)

	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "this field is required", "password": "this field is required"}),
		},
		{
			name: "unknown email", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.Login{Email: "lol@test.cm", Password: "FatPanda#2020"}),
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.Login{Email: usr.Email, Password: "lol"}),
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated account", wantCode: http.StatusForbidden,
			body:     marchallObj(t, user.Login{Email: "ndog@test.cm", Password: "FatPanda#2020"}),
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name: "logged in", wantCode: http.StatusOK,
			body: marchallObj(t, user.Login{Email: usr.Email, Password: "FatPanda#2020"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/login"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if respData.Token == "" {
					t.Error("failed! empty token")
				}

				refreshed, err := usrRepo.GetUserByID(usr.ID)
				if err != nil {
					t.Fatalf("GetUserByID(): %v", err)
				}
				if refreshed.LastLogin.IsZero() {
					t.Error("lastLogin not set")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_refreshToken(t *testing.T) {
	app := setup(t)

	naughty := createUser(t, "N Dog", "ndog@test.cm", "FatPanda#2020", true, false)
	hero := createUser(t, "Hero", "hero@test.cm", "FatPanda#2020", true, true)

	// older than the refresh threshold
	oldOriat := time.Now().Add(-2 * conf.Server.JWTRefreshExpirationDelta).Unix()
	unrefreshableToken, err := GenerateToken(conf, GetUserClaims(conf, hero, oldOriat))
	if err != nil {
		t.Fatalf("GenerateToken(): %v", err)
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Inactive user not allowed", token: getToken(t, naughty), wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"})},
		{name: "Refresh period expired", token: unrefreshableToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "refresh has expired"})},
		{name: "Token refreshed", token: getToken(t, hero), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/token-refresh"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			// cannot guess new token.. just check that it's not empty
			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Errorf("json.Unmarshal(): %v", err)
				}
				if respData.Token == "" {
					t.Error("failed! empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_verifyEmail(t *testing.T) {
	app := setup(t)

	// register to get a verification mail
	emailsvc.ClearSentMessages()
	body := marchallObj(t, user.NewUser{
		Name: "Tim", Email: "tim@test.cm", Password: "FatPanda#2020", PasswordConfirm: "FatPanda#2020",
	})
	req, rec := newRequest(http.MethodPost, "/v1/users/register", body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed! code = %v", rec.Code)
	}
	var usr user.User
	if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	uid, token := lastMailToken(t, verifyURLRegex)

	// study data stays closed until the address is verified
	req, rec = newAuthRequest(http.MethodGet, "/v1/subjects", getToken(t, usr))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("unverified access: code = %v; want %v", rec.Code, http.StatusForbidden)
	}

	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, user.VerifyEmail{Token: "this field is required", UID: "this field is required"}),
		},
		{
			name: "bad uid", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.VerifyEmail{Token: token, UID: "!!!"}),
			wantData: marchallObj(t, map[string]string{"uid": "invalid token"}),
		},
		{
			name: "bad token", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.VerifyEmail{Token: "lol", UID: uid}),
			wantData: marchallObj(t, map[string]string{"token": "invalid token"}),
		},
		{name: "verified", wantCode: http.StatusOK, body: marchallObj(t, user.VerifyEmail{Token: token, UID: uid})},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/verify-email"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var verified user.User
				if err := json.Unmarshal(rec.Body.Bytes(), &verified); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if !verified.EmailVerified {
					t.Error("email not marked verified")
				}

				// study data opens up
				req, rec = newAuthRequest(http.MethodGet, "/v1/subjects", getToken(t, verified))
				app.ServeHTTP(rec, req)
				if rec.Code != http.StatusOK {
					t.Errorf("verified access: code = %v; want %v", rec.Code, http.StatusOK)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_resetPassword(t *testing.T) {
	app := setup(t)

	hero := createUser(t, "Hero", "hero@test.cm", "FatPanda#2020", true, true)
	successData := marchallObj(t, SuccessResponse{Success: "If the email address supplied is associated with an active account on this system, " +
		"an email will arrive in your inbox shortly with instructions to reset your password."})

	type extraTest struct {
		emailSent bool
		to        mail.Address
	}
	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, PasswordResetRequest{Email: "this field is required"}),
		},
		{
			name: "invalid email", wantCode: http.StatusBadRequest, body: marchallObj(t, PasswordResetRequest{Email: "lol"}),
			wantData: marchallObj(t, PasswordResetRequest{Email: "email must be a valid email address"}),
		},
		{
			name: "unknown email", wantCode: http.StatusOK, body: marchallObj(t, PasswordResetRequest{Email: "lol@test.com"}),
			wantData: successData, extra: extraTest{emailSent: false},
		},
		{
			name: "known email", wantCode: http.StatusOK, body: marchallObj(t, PasswordResetRequest{Email: hero.Email}),
			wantData: successData, extra: extraTest{emailSent: true, to: mail.Address{Name: hero.Name, Address: hero.Email}},
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/password-reset"

		t.Run(tt.name, func(t *testing.T) {
			emailsvc.ClearSentMessages()

			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if extra, ok := tt.extra.(extraTest); ok {
				if extra.emailSent {
					if len(emailsvc.SentMessages) != 1 {
						t.Fatalf("failed! len(SentMessages) = %d; want 1", len(emailsvc.SentMessages))
					}
					msg := emailsvc.SentMessages[0]
					if msg.To[0] != extra.to {
						t.Errorf("failed! To = %v; want %v", msg.To[0], extra.to)
					}
					if !strings.Contains(msg.TextContent, extra.to.Name) {
						t.Errorf("failed! text content does not contain recipient's name %q", extra.to.Name)
					}
					if !resetURLRegex.MatchString(msg.TextContent) {
						t.Errorf("failed! text content does not match %v", resetURLRegex)
					}
					if !resetURLRegex.MatchString(msg.HTMLContent) {
						t.Errorf("failed! HTML content does not match %v", resetURLRegex)
					}
				} else if len(emailsvc.SentMessages) > 0 {
					t.Errorf("failed! len(SentMessages) = %d; want 0", len(emailsvc.SentMessages))
				}
			}
		})
	}
}

func Test_userApi_confirmPasswordReset(t *testing.T) {
	app := setup(t)

	hero := createUser(t, "Hero", "hero@test.cm", "FatPanda#2020", true, true)

	// request a reset to get a usable token
	emailsvc.ClearSentMessages()
	req, rec := newRequest(http.MethodPost, "/v1/users/password-reset", marchallObj(t, PasswordResetRequest{Email: hero.Email}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("password-reset failed! code = %v", rec.Code)
	}
	uid, token := lastMailToken(t, resetURLRegex)

	body := marchallObj(t, user.ResetUserPassword{
		Token: token, UID: uid, Password: "NewFatPanda#2021", PasswordConfirm: "NewFatPanda#2021",
	})
	req, rec = newRequest(http.MethodPost, "/v1/users/password-reset-confirm", body)
	app.ServeHTTP(rec, req)

	tt := httpTest{
		wantCode: http.StatusOK,
		wantData: marchallObj(t, SuccessResponse{Success: "Password has been reset with the new password."}),
	}
	checkCodeAndData(t, tt, rec)

	// the new password works
	req, rec = newRequest(http.MethodPost, "/v1/users/login", marchallObj(t, user.Login{Email: hero.Email, Password: "NewFatPanda#2021"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("login with new password: code = %v; want %v", rec.Code, http.StatusOK)
	}

	// the token is single-use
	req, rec = newRequest(http.MethodPost, "/v1/users/password-reset-confirm", body)
	app.ServeHTTP(rec, req)
	tt = httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, map[string]string{"token": "invalid token"}),
	}
	checkCodeAndData(t, tt, rec)
}

func Test_userApi_me(t *testing.T) {
	app := setup(t)

	hero := createUser(t, "Hero", "hero@test.cm", "FatPanda#2020", true, true)
	token := getToken(t, hero)

	t.Run("retrieve", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users/me", token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, hero)}, rec)
	})

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/users/me")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
	})

	t.Run("update profile", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/me", token, marchallObj(t, user.UpdateProfile{Name: "Hero II"}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v", rec.Code)
		}
		var usr user.User
		if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if usr.Name != "Hero II" {
			t.Errorf("Name = %q; want %q", usr.Name, "Hero II")
		}
		if !usr.EmailVerified {
			t.Error("unchanged email must stay verified")
		}
	})

	t.Run("email change resets verification", func(t *testing.T) {
		emailsvc.ClearSentMessages()

		req, rec := newAuthRequest(http.MethodPut, "/v1/users/me", token, marchallObj(t, user.UpdateProfile{Email: "hero2@test.cm"}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v", rec.Code)
		}
		var usr user.User
		if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if usr.EmailVerified {
			t.Error("changed email must reset the verified flag")
		}
		if len(emailsvc.SentMessages) != 1 {
			t.Fatalf("len(SentMessages) = %d; want 1", len(emailsvc.SentMessages))
		}
		if !verifyURLRegex.MatchString(emailsvc.SentMessages[0].TextContent) {
			t.Error("no verification link in mail")
		}
	})

	t.Run("change password", func(t *testing.T) {
		body := marchallObj(t, user.ChangePassword{OldPassword: "lol", Password: "NewFatPanda#2021", PasswordConfirm: "NewFatPanda#2021"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/me/password", token, body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"old_password": "invalid password"}),
		}, rec)

		body = marchallObj(t, user.ChangePassword{OldPassword: "FatPanda#2020", Password: "NewFatPanda#2021", PasswordConfirm: "NewFatPanda#2021"})
		req, rec = newAuthRequest(http.MethodPut, "/v1/users/me/password", token, body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusOK,
			wantData: marchallObj(t, SuccessResponse{Success: "Password changed."}),
		}, rec)
	})

	t.Run("destroy", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/users/me", token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; want %v", rec.Code, http.StatusNoContent)
		}
		if _, err := usrRepo.GetUserByID(hero.ID); err != user.ErrNotFound {
			t.Errorf("GetUserByID() err = %v; want %v", err, user.ErrNotFound)
		}
	})
}
