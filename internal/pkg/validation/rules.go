package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/Anandhu5Uthaman/College-mini/internal/app/models"
)

// Validation rule patterns
var (
	KTUIDPattern = regexp.MustCompile(`^(IDK|LIDK)[0-9A-Z]+$`)
	PhonePattern = regexp.MustCompile(`^\+91[0-9]{10}$`)
)

// Field limits
const (
	FullnameMinLength = 3
	UsernameMinLength = 3
	PasswordMinLength = 6
	BioMaxLength      = 1000
	FirstPassoutYear  = 2010
)

// Violation messages reported to clients.
const (
	MsgFullname          = "Fullname must be at least 3 characters long"
	MsgPasswordLength    = "Password must be at least 6 characters long"
	MsgPasswordStrength  = "Password must contain at least one number, one lowercase and one uppercase letter"
	MsgRole              = "Role must be either Student, Alumni, or Faculty"
	MsgDepartment        = "Please select a valid department"
	MsgKTUIDRequired     = "KTU ID is required for students and alumni"
	MsgKTUIDFormat       = "KTU ID must start with IDK or LIDK followed by numbers and uppercase letters"
	MsgKTUIDNotAllowed   = "KTU ID is only allowed for students and alumni"
	MsgPassoutRequired   = "Passout year is required for alumni"
	MsgPassoutRange      = "Passout year must be between 2010 and current year"
	MsgPassoutNotAllowed = "Passout year is only allowed for alumni"
	MsgPhone             = "Phone number must start with +91 followed by 10 digits"
	MsgUsername          = "Username must be at least 3 characters long"
)

// SignupInput is the raw registration payload.
type SignupInput struct {
	Fullname    string
	Email       string
	Password    string
	Username    string
	Role        string
	Department  string
	KTUID       *string
	PassoutYear *int
	Phone       string
}

// ProfileInput holds the format-checked fields of a profile edit.
type ProfileInput struct {
	Phone       *string
	KTUID       *string
	PassoutYear *int
}

// Rules evaluates registration and profile rules against an institution
// email domain and a clock.
type Rules struct {
	emailDomain string
	now         func() time.Time
}

// NewRules creates the rule set. emailDomain includes the leading "@".
func NewRules(emailDomain string) *Rules {
	return &Rules{emailDomain: emailDomain, now: time.Now}
}

// WithClock replaces the clock used for the passout year ceiling.
func (r *Rules) WithClock(now func() time.Time) *Rules {
	r.now = now
	return r
}

// EmailDomain returns the required email suffix.
func (r *Rules) EmailDomain() string {
	return r.emailDomain
}

// Signup checks in against every registration rule and returns the
// violations in rule order. An empty result means the input is accepted.
func (r *Rules) Signup(in SignupInput) []string {
	var violations []string

	if len(strings.TrimSpace(in.Fullname)) < FullnameMinLength {
		violations = append(violations, MsgFullname)
	}

	if !r.validEmail(in.Email) {
		violations = append(violations, r.emailMessage())
	}

	violations = append(violations, PasswordViolations(in.Password)...)

	role, roleOK := models.ParseRole(in.Role)
	if !roleOK {
		violations = append(violations, MsgRole)
	}

	if _, ok := models.ParseDepartment(in.Department); !ok {
		violations = append(violations, MsgDepartment)
	}

	if roleOK {
		violations = append(violations, r.roleViolations(role, in.KTUID, in.PassoutYear)...)
	}

	if !PhonePattern.MatchString(in.Phone) {
		violations = append(violations, MsgPhone)
	}

	if in.Username != "" && len(in.Username) < UsernameMinLength {
		violations = append(violations, MsgUsername)
	}

	return violations
}

// Profile checks the format of phone, ktu_id and passout_year in a profile
// edit against the caller's current role variant.
func (r *Rules) Profile(in ProfileInput, current models.RoleDetails) []string {
	var violations []string

	switch current.(type) {
	case models.StudentDetails:
		if in.KTUID != nil {
			violations = append(violations, r.ktuViolations(in.KTUID)...)
		}
		if in.PassoutYear != nil {
			violations = append(violations, MsgPassoutNotAllowed)
		}
	case models.AlumniDetails:
		if in.KTUID != nil {
			violations = append(violations, r.ktuViolations(in.KTUID)...)
		}
		if in.PassoutYear != nil {
			violations = append(violations, r.passoutViolations(in.PassoutYear)...)
		}
	case models.FacultyDetails:
		if in.KTUID != nil {
			violations = append(violations, MsgKTUIDNotAllowed)
		}
		if in.PassoutYear != nil {
			violations = append(violations, MsgPassoutNotAllowed)
		}
	default:
		panic(fmt.Sprintf("validation: unhandled role details %T", current))
	}

	if in.Phone != nil && !PhonePattern.MatchString(*in.Phone) {
		violations = append(violations, MsgPhone)
	}

	return violations
}

// roleViolations applies rules 6 and 7 for the given role.
func (r *Rules) roleViolations(role models.Role, ktuID *string, passoutYear *int) []string {
	var violations []string
	switch role {
	case models.RoleStudent:
		violations = append(violations, r.ktuViolations(ktuID)...)
	case models.RoleAlumni:
		violations = append(violations, r.ktuViolations(ktuID)...)
		violations = append(violations, r.passoutViolations(passoutYear)...)
	case models.RoleFaculty:
	}
	return violations
}

func (r *Rules) ktuViolations(ktuID *string) []string {
	if ktuID == nil || *ktuID == "" {
		return []string{MsgKTUIDRequired}
	}
	if !KTUIDPattern.MatchString(*ktuID) {
		return []string{MsgKTUIDFormat}
	}
	return nil
}

func (r *Rules) passoutViolations(year *int) []string {
	if year == nil {
		return []string{MsgPassoutRequired}
	}
	if *year < FirstPassoutYear || *year > r.now().Year() {
		return []string{MsgPassoutRange}
	}
	return nil
}

func (r *Rules) validEmail(email string) bool {
	if !strings.HasSuffix(email, r.emailDomain) {
		return false
	}
	local := strings.TrimSuffix(email, r.emailDomain)
	return local != "" && !strings.ContainsAny(local, "@ \t")
}

func (r *Rules) emailMessage() string {
	return fmt.Sprintf("Must use a valid %s email address", r.emailDomain)
}

// PasswordViolations applies the password rule on its own, for signup and
// password changes.
func PasswordViolations(password string) []string {
	if utf8.RuneCountInString(password) < PasswordMinLength {
		return []string{MsgPasswordLength}
	}

	var digit, lower, upper bool
	for _, ch := range password {
		switch {
		case unicode.IsDigit(ch):
			digit = true
		case unicode.IsLower(ch):
			lower = true
		case unicode.IsUpper(ch):
			upper = true
		}
	}
	if !digit || !lower || !upper {
		return []string{MsgPasswordStrength}
	}
	return nil
}

// BuildRoleDetails turns validated signup fields into the role variant.
func BuildRoleDetails(in SignupInput) (models.RoleDetails, error) {
	role, ok := models.ParseRole(in.Role)
	if !ok {
		return nil, fmt.Errorf("unknown role %q", in.Role)
	}
	switch role {
	case models.RoleStudent:
		return models.NewRoleDetails(role, in.KTUID, nil)
	case models.RoleAlumni:
		return models.NewRoleDetails(role, in.KTUID, in.PassoutYear)
	default:
		return models.NewRoleDetails(role, nil, nil)
	}
}
