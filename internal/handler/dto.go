package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hitoshi/dda/internal/auth"
	"github.com/hitoshi/dda/internal/model"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 64 << 10

// loginRequest is the body of POST /v1/glb/auth/google.
// When idToken is present the code fields are ignored.
type loginRequest struct {
	IDToken           string `json:"idToken"`
	AuthorizationCode string `json:"authorizationCode" validate:"required_without=IDToken"`
	CodeVerifier      string `json:"codeVerifier" validate:"required_without=IDToken"`
	RedirectURI       string `json:"redirectUri" validate:"required_without=IDToken"`
}

func (req *loginRequest) normalize() {
	req.IDToken = strings.TrimSpace(req.IDToken)
	req.AuthorizationCode = strings.TrimSpace(req.AuthorizationCode)
	req.CodeVerifier = strings.TrimSpace(req.CodeVerifier)
	req.RedirectURI = strings.TrimSpace(req.RedirectURI)
}

func (req *loginRequest) toGoogleLogin() auth.GoogleLogin {
	return auth.GoogleLogin{
		IDToken:           req.IDToken,
		AuthorizationCode: req.AuthorizationCode,
		CodeVerifier:      req.CodeVerifier,
		RedirectURI:       req.RedirectURI,
	}
}

// updateUserRequest is the body of PATCH /v1/user/{user_id}. Absent and null
// fields both leave the stored value untouched.
type updateUserRequest struct {
	Email          *string `json:"email" validate:"omitnil,dda_email"`
	GivenName      *string `json:"givenName" validate:"omitnil,dda_name"`
	FamilyName     *string `json:"familyName" validate:"omitnil,dda_name"`
	PhoneNumber    *string `json:"phoneNumber" validate:"omitnil,dda_phone"`
	ProfilePicture *string `json:"profilePicture" validate:"omitnil,dda_picture"`
}

func (req *updateUserRequest) normalize() {
	for _, field := range []*string{req.Email, req.GivenName, req.FamilyName, req.PhoneNumber, req.ProfilePicture} {
		if field != nil {
			*field = strings.TrimSpace(*field)
		}
	}
}

func (req *updateUserRequest) toPatch() *model.UserPatch {
	return &model.UserPatch{
		Email:          req.Email,
		GivenName:      req.GivenName,
		FamilyName:     req.FamilyName,
		PhoneNumber:    req.PhoneNumber,
		ProfilePicture: req.ProfilePicture,
	}
}

type userDto struct {
	ID              string  `json:"id"`
	Email           string  `json:"email"`
	GivenName       string  `json:"givenName"`
	FamilyName      string  `json:"familyName"`
	PhoneNumber     *string `json:"phoneNumber"`
	ProfilePicture  *string `json:"profilePicture"`
	IsEmailVerified bool    `json:"isEmailVerified"`
	IsPhoneVerified bool    `json:"isPhoneVerified"`
}

func toUserDto(u *model.User) userDto {
	return userDto{
		ID:              u.ID,
		Email:           u.Email,
		GivenName:       u.GivenName,
		FamilyName:      u.FamilyName,
		PhoneNumber:     u.PhoneNumber,
		ProfilePicture:  u.ProfilePicture,
		IsEmailVerified: u.IsEmailVerified,
		IsPhoneVerified: u.IsPhoneVerified,
	}
}

type userSessionDto struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      userDto   `json:"user"`
}

type healthDto struct {
	Status string `json:"status"`
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
// A value of the wrong JSON type fails at its field and any other malformed
// body fails at the field "body".
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return &model.ValidationError{Field: typeErr.Field}
	}
	return &model.ValidationError{Field: "body"}
}
