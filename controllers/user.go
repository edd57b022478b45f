package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"go-ordering/apperrors"
	"go-ordering/middleware"
	"go-ordering/service"
	"go-ordering/utils"
)

// UserController handles signup and the login session
type UserController struct {
	*Base
	Users         *service.UserService
	Tokens        *utils.TokenManager
	SecureCookies bool
}

func NewUserController(base *Base, users *service.UserService, tokens *utils.TokenManager, secureCookies bool) *UserController {
	return &UserController{Base: base, Users: users, Tokens: tokens, SecureCookies: secureCookies}
}

// SignupForm renders the empty signup form
func (uc *UserController) SignupForm(w http.ResponseWriter, r *http.Request) {
	uc.render(w, r, http.StatusOK, "signup", Page{"Form": service.SignupInput{}})
}

// Signup creates the account and sends the new user to the login page
func (uc *UserController) Signup(w http.ResponseWriter, r *http.Request) {
	in := service.SignupInput{
		FirstName:    r.FormValue("firstName"),
		LastName:     r.FormValue("lastName"),
		Email:        r.FormValue("email"),
		Password:     r.FormValue("password"),
		City:         r.FormValue("city"),
		BusinessName: r.FormValue("businessName"),
	}

	var err error
	if age := strings.TrimSpace(r.FormValue("age")); age != "" {
		in.Age, err = strconv.Atoi(age)
		if err != nil {
			err = apperrors.Validation("age %q is not a number", age)
		}
	}

	if err == nil {
		ctx, cancel := uc.withTimeout(r)
		defer cancel()
		_, err = uc.Users.Signup(ctx, in)
	}

	if err == nil {
		http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
		return
	}

	switch kind := apperrors.KindOf(err); kind {
	case apperrors.KindValidation, apperrors.KindConflict:
		status := http.StatusBadRequest
		if kind == apperrors.KindConflict {
			status = http.StatusConflict
		}
		in.Password = ""
		uc.render(w, r, status, "signup", Page{"Form": in, "Error": apperrors.Message(err)})
	default:
		uc.RespondError(w, r, err)
	}
}

// LoginForm renders the login form
func (uc *UserController) LoginForm(w http.ResponseWriter, r *http.Request) {
	uc.render(w, r, http.StatusOK, "login", Page{"Email": ""})
}

// Login checks the credentials and hands out the session cookie
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")

	ctx, cancel := uc.withTimeout(r)
	defer cancel()

	user, err := uc.Users.Authenticate(ctx, email, r.FormValue("password"))
	if apperrors.KindOf(err) == apperrors.KindUnauthorized {
		uc.render(w, r, http.StatusUnauthorized, "login", Page{"Email": email, "Error": apperrors.Message(err)})
		return
	}
	if err != nil {
		uc.RespondError(w, r, err)
		return
	}

	token, err := uc.Tokens.GenerateJWT(user)
	if err != nil {
		uc.RespondError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(uc.Tokens.TTL().Seconds()),
		HttpOnly: true,
		Secure:   uc.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/orders/", http.StatusSeeOther)
}

// Logout drops the session cookie
func (uc *UserController) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   uc.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
}
