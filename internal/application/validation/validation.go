// Package validation convierte entrada no confiable en valores tipados y normalizados.
//
// Cada función devuelve el valor listo para usar o un *domain.ValidationError con
// un mensaje por campo; nunca entra en pánico ante entrada malformada.
package validation

import (
	"encoding/json"
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/accounts-api/internal/application/dto"
	"github.com/jhoicas/accounts-api/internal/domain"
	"github.com/jhoicas/accounts-api/internal/domain/entity"
)

// Mensajes de cabecera por tipo de payload.
const (
	MsgInvalidSignUp = "Invalid signup data"
	MsgInvalidSignIn = "Invalid signin data"
	MsgInvalidUserID = "Invalid user ID"
	MsgInvalidUpdate = "Invalid update data"
)

// SignUpInput registro ya normalizado.
type SignUpInput struct {
	Name     string
	Email    string
	Password string
	Role     entity.Role
}

// SignInInput credenciales ya normalizadas.
type SignInInput struct {
	Email    string
	Password string
}

type userIDParam struct {
	ID string `json:"id" validate:"required,number"`
}

// Validator envuelve go-playground/validator con nombres de campo JSON.
// Es seguro para uso concurrente.
type Validator struct {
	v *validator.Validate
}

// New construye el validador.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return &Validator{v: v}
}

// SignUp valida el payload de registro. Role por defecto: user.
func (val *Validator) SignUp(raw []byte) (SignUpInput, error) {
	var in dto.SignUpRequest
	if err := decode(raw, &in, MsgInvalidSignUp); err != nil {
		return SignUpInput{}, err
	}
	return val.SignUpRequest(in)
}

// SignUpRequest aplica las reglas de registro a un DTO ya construido (cmd/seed).
func (val *Validator) SignUpRequest(in dto.SignUpRequest) (SignUpInput, error) {
	in.Name = normalizeName(in.Name)
	in.Email = NormalizeEmail(in.Email)
	if err := val.check(&in, MsgInvalidSignUp); err != nil {
		return SignUpInput{}, err
	}
	role := entity.Role(in.Role)
	if role == "" {
		role = entity.RoleUser
	}
	return SignUpInput{Name: in.Name, Email: in.Email, Password: in.Password, Role: role}, nil
}

// SignIn valida las credenciales de login.
func (val *Validator) SignIn(raw []byte) (SignInInput, error) {
	var in dto.SignInRequest
	if err := decode(raw, &in, MsgInvalidSignIn); err != nil {
		return SignInInput{}, err
	}
	in.Email = NormalizeEmail(in.Email)
	if err := val.check(&in, MsgInvalidSignIn); err != nil {
		return SignInInput{}, err
	}
	return SignInInput{Email: in.Email, Password: in.Password}, nil
}

// UserID convierte el parámetro de ruta en un entero estrictamente positivo.
func (val *Validator) UserID(raw string) (int64, error) {
	p := userIDParam{ID: raw}
	if err := val.check(&p, MsgInvalidUserID); err != nil {
		return 0, domain.NewValidationError(MsgInvalidUserID, "id", "ID must be a positive integer")
	}
	id, err := strconv.ParseInt(p.ID, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(MsgInvalidUserID, "id", "ID must be a positive integer")
	}
	return id, nil
}

// Update valida cambios parciales con las mismas reglas por campo que el registro.
func (val *Validator) Update(raw []byte) (entity.UserChanges, error) {
	var in dto.UpdateUserRequest
	if err := decode(raw, &in, MsgInvalidUpdate); err != nil {
		return entity.UserChanges{}, err
	}
	if in.Name != nil {
		n := normalizeName(*in.Name)
		in.Name = &n
	}
	if in.Email != nil {
		e := NormalizeEmail(*in.Email)
		in.Email = &e
	}
	if err := val.check(&in, MsgInvalidUpdate); err != nil {
		return entity.UserChanges{}, err
	}
	changes := entity.UserChanges{Name: in.Name, Email: in.Email}
	if in.Role != nil {
		r := entity.Role(*in.Role)
		changes.Role = &r
	}
	return changes, nil
}

// NormalizeEmail recorta espacios y pasa a minúsculas.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// decode acepta campos desconocidos y los descarta; JSON mal formado o con basura final es error.
func decode(raw []byte, dst any, message string) error {
	if len(strings.TrimSpace(string(raw))) == 0 {
		raw = []byte("{}")
	}
	err := json.Unmarshal(raw, dst)
	if err == nil {
		return nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return domain.NewValidationError(message, typeErr.Field, "expected "+typeErr.Type.String())
	}
	return domain.NewValidationError(message, "body", "request body must be a JSON object")
}

func (val *Validator) check(s any, message string) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &domain.ValidationError{Message: message}
	}
	out := &domain.ValidationError{Message: message}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, domain.FieldError{Field: fe.Field(), Message: describe(fe)})
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "email":
		return "must be a valid email"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "number":
		return "must be a number"
	default:
		return "is invalid"
	}
}
