package user

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/somo/core"
)

var (
	// password policy
	pwdMinLen     = 8
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)

	pwdNoSpaceTag  = "pwdnospace"
	pwdNoSpaceText = "password must not contain whitespace"

	pwdNotAllNumTag  = "pwdnotallnum"
	pwdNotAllNumText = "password cannot be entirely numeric"

	pwdComplexityTag  = "pwdcplx"
	pwdComplexityText = "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character"
	specialRegex      = regexp.MustCompile("[^A-Za-z0-9]")

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to user attributes"

	pwdNoCommonTag  = "pwdnocommon"
	pwdNoCommonText = "password is too common"
	commonPasswords = make([]string, 0, 19727) // number of total pwds in /assets/common-passwords.txt.gz
)

// InitValidators registers user struct validations and their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(userStructValidation, NewUser{})
	validate.RegisterStructValidation(userStructValidation, ChangePassword{})
	validate.RegisterStructValidation(userStructValidation, ResetUserPassword{})

	core.RegisterCustomTranslation(validate, translator, pwdMinLenTag, pwdMinLenText)
	core.RegisterCustomTranslation(validate, translator, pwdNoSpaceTag, pwdNoSpaceText)
	core.RegisterCustomTranslation(validate, translator, pwdNotAllNumTag, pwdNotAllNumText)
	core.RegisterCustomTranslation(validate, translator, pwdComplexityTag, pwdComplexityText)
	core.RegisterCustomTranslation(validate, translator, pwdAttrSimTag, pwdAttrSimText)
	core.RegisterCustomTranslation(validate, translator, pwdNoCommonTag, pwdNoCommonText)
}

// LoadCommonPasswords loads the bundled common-passwords list used by the
// password policy. Failure to load only weakens that single check.
func LoadCommonPasswords(conf *core.Config, logger core.Logger) {
	pwdAssetPath := filepath.Join(conf.WorkDir, "assets", "common-passwords.txt.gz")
	file, err := os.Open(pwdAssetPath)
	if err != nil {
		logger.Warn(fmt.Sprintf("loading common passwords: %v", err))
		return
	}
	//goland:noinspection GoUnhandledErrorResult
	defer file.Close()

	gzRdr, err := gzip.NewReader(file)
	if err != nil {
		logger.Warn(fmt.Sprintf("loading common passwords: %v", err))
		return
	}
	scanner := bufio.NewScanner(gzRdr)
	for scanner.Scan() {
		commonPasswords = append(commonPasswords, strings.TrimSpace(scanner.Text()))
	}
	sort.Strings(commonPasswords)
}

// userStructValidation applies the password policy to user payloads.
func userStructValidation(sl validator.StructLevel) {
	switch pl := sl.Current().Interface().(type) {
	case NewUser:
		validatePassword(pl.Password, pl.Name, pl.Email, sl)
	case ChangePassword:
		validatePassword(pl.Password, "", "", sl)
	case ResetUserPassword:
		validatePassword(pl.Password, "", "", sl)
	}
}

// validatePassword applies the password policy to provided password:
// - minLen: 8
// - no whitespace
// - no all numeric
// - complexity: 1 upper, 1 lower, 1 digit, 1 special
// - no user attrs similarity
// - no common password
func validatePassword(pwd, name, email string, sl validator.StructLevel) {
	reportErr := func(tag string) {
		sl.ReportError(pwd, "password", "Password", tag, "")
	}

	var (
		digitCount                             int
		hasUpper, hasLower, hasDig, hasSpecial bool
	)

	// - minLen: 8
	pwdLen := len(pwd)
	if pwdLen < pwdMinLen {
		reportErr(pwdMinLenTag)
		return
	}
	for _, char := range []rune(pwd) {
		// - no whitespace
		if unicode.IsSpace(char) {
			reportErr(pwdNoSpaceTag)
			return
		}
		if unicode.IsDigit(char) {
			digitCount++
		}
		if !hasUpper && unicode.IsUpper(char) {
			hasUpper = true
		}
		if !hasLower && unicode.IsLower(char) {
			hasLower = true
		}
	}

	// - not all numeric
	if digitCount == pwdLen {
		reportErr(pwdNotAllNumTag)
		return
	}

	// - complexity: 1 upper, 1 lower, 1 digit & 1 special
	hasDig = digitCount > 0
	hasSpecial = specialRegex.MatchString(pwd)
	if !(hasUpper && hasLower && hasDig && hasSpecial) {
		reportErr(pwdComplexityTag)
		return
	}

	// - no user attrs similarity
	getRatio := func(pass, usrAttr string) float64 {
		if usrAttr == "" {
			return 0
		}
		return difflib.NewMatcher(strings.Split(pass, ""), strings.Split(usrAttr, "")).QuickRatio()
	}
	if getRatio(pwd, name) >= pwdMaxSim || getRatio(pwd, email) >= pwdMaxSim {
		reportErr(pwdAttrSimTag)
		return
	}

	// - no common passwords
	lpwd := strings.ToLower(pwd)
	if idx := sort.SearchStrings(commonPasswords, lpwd); idx < len(commonPasswords) {
		if match := commonPasswords[idx]; lpwd == match {
			reportErr(pwdNoCommonTag)
			return
		}
	}
}
