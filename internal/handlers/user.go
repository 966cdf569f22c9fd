package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/AnshRaj112/videotube-backend/internal/metrics"
	"github.com/AnshRaj112/videotube-backend/internal/middleware"
	"github.com/AnshRaj112/videotube-backend/internal/models"
	"github.com/AnshRaj112/videotube-backend/internal/services"
	"github.com/AnshRaj112/videotube-backend/pkg/utils"
)

const (
	AccessTokenCookie  = middleware.AccessTokenCookie
	RefreshTokenCookie = "refreshToken"

	AvatarField     = "avatar"
	CoverImageField = "coverImage"
)

const (
	msgAllFieldsRequired   = "All fields are required"
	msgUserExists          = "User with email or username already exists"
	msgAvatarRequired      = "Avatar file is required"
	msgRegisterFailed      = "Something went wrong while registering the user"
	msgIdentifierRequired  = "username or email is required"
	msgPasswordRequired    = "password is required"
	msgUserNotFound        = "User does not exist"
	msgInvalidCredentials  = "Invalid user credentials"
	msgTokenFailed         = "Something went wrong while generating access and refresh token"
	msgUnauthorized        = "Unauthorized request"
	msgInvalidRefresh      = "Invalid refresh token"
	msgRefreshExpired      = "Refresh token is expired or used"
)

// PasswordHasher hashes and checks user passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}

// CookieOptions are applied to both auth cookies. Cookies are always
// HttpOnly and Secure.
type CookieOptions struct {
	Domain   string
	SameSite http.SameSite
}

type UserHandler struct {
	Store    services.UserStore
	Media    services.MediaUploader
	Hasher   PasswordHasher
	Tokens   *services.TokenService
	Denylist *services.TokenDenylist
	Cookies  CookieOptions
	Logger   *slog.Logger
}

type registerRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

// Register creates an account from a multipart form. The avatar is
// required; a cover image is optional and its upload failure is tolerated.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) (err error) {
	defer func() { metrics.Registrations.WithLabelValues(outcome(err)).Inc() }()

	req := registerRequest{
		FullName: r.FormValue("fullName"),
		Email:    r.FormValue("email"),
		Username: r.FormValue("username"),
		Password: r.FormValue("password"),
	}
	if utils.AnyBlank(req.FullName, req.Email, req.Username, req.Password) {
		return utils.NewAPIError(http.StatusBadRequest, msgAllFieldsRequired)
	}

	username := utils.NormalizeUsername(req.Username)
	email := utils.NormalizeEmail(req.Email)

	_, err = h.Store.FindByUsernameOrEmail(r.Context(), username, email)
	switch {
	case err == nil:
		return utils.NewAPIError(http.StatusConflict, msgUserExists)
	case !errors.Is(err, services.ErrUserNotFound):
		return err
	}

	files := middleware.UploadedFilesFromContext(r.Context())
	avatarPath := files.Path(AvatarField)
	if avatarPath == "" {
		return utils.NewAPIError(http.StatusBadRequest, msgAvatarRequired)
	}

	avatar, err := h.Media.UploadLocalFile(r.Context(), avatarPath)
	if err != nil || avatar.Location() == "" {
		h.Logger.WarnContext(r.Context(), "avatar upload failed", slog.Any("error", err))
		return utils.NewAPIError(http.StatusBadRequest, msgAvatarRequired)
	}

	var coverImage string
	if coverPath := files.Path(CoverImageField); coverPath != "" {
		cover, err := h.Media.UploadLocalFile(r.Context(), coverPath)
		if err != nil {
			h.Logger.WarnContext(r.Context(), "cover image upload failed", slog.Any("error", err))
		}
		coverImage = cover.Location()
	}

	hash, err := h.Hasher.Hash(req.Password)
	if err != nil {
		return err
	}

	user := &models.User{
		Username:   username,
		Email:      email,
		FullName:   strings.TrimSpace(req.FullName),
		Avatar:     avatar.Location(),
		CoverImage: coverImage,
		Password:   hash,
	}
	id, err := h.Store.Create(r.Context(), user)
	if errors.Is(err, services.ErrDuplicateUser) {
		return utils.NewAPIError(http.StatusConflict, msgUserExists)
	}
	if err != nil {
		return err
	}

	created, err := h.Store.FindPublicByID(r.Context(), id)
	if errors.Is(err, services.ErrUserNotFound) {
		return utils.NewAPIError(http.StatusInternalServerError, msgRegisterFailed)
	}
	if err != nil {
		return err
	}

	return utils.WriteSuccess(w, http.StatusCreated, created.Public(), "User registered successfully")
}

// Login checks credentials and issues a fresh token pair as cookies and in
// the body.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) (err error) {
	defer func() { metrics.Logins.WithLabelValues(outcome(err)).Inc() }()

	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	username := utils.NormalizeUsername(req.Username)
	email := utils.NormalizeEmail(req.Email)
	if username == "" && email == "" {
		return utils.NewAPIError(http.StatusBadRequest, msgIdentifierRequired)
	}
	if req.Password == "" {
		return utils.NewAPIError(http.StatusBadRequest, msgPasswordRequired)
	}

	user, err := h.Store.FindByUsernameOrEmail(r.Context(), username, email)
	if errors.Is(err, services.ErrUserNotFound) {
		return utils.NewAPIError(http.StatusNotFound, msgUserNotFound)
	}
	if err != nil {
		return err
	}

	ok, err := h.Hasher.Verify(req.Password, user.Password)
	if err != nil {
		return err
	}
	if !ok {
		return utils.NewAPIError(http.StatusUnauthorized, msgInvalidCredentials)
	}

	pair, err := h.issueTokens(r, user)
	if err != nil {
		return err
	}

	h.setAuthCookies(w, pair)
	return utils.WriteSuccess(w, http.StatusOK, loginResponse{
		User:         user.Public(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "User logged in successfully")
}

// Logout clears the stored refresh token, revokes the presented access
// token and expires both cookies.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) error {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		return utils.NewAPIError(http.StatusUnauthorized, msgUnauthorized)
	}

	if err := h.Store.ClearRefreshToken(r.Context(), user.ID); err != nil && !errors.Is(err, services.ErrUserNotFound) {
		return err
	}

	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok && claims.ExpiresAt != nil {
		if err := h.Denylist.Revoke(r.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
			h.Logger.WarnContext(r.Context(), "failed to revoke access token", slog.Any("error", err))
		}
	}

	h.clearAuthCookies(w)
	metrics.Logouts.Inc()
	return utils.WriteSuccess(w, http.StatusOK, struct{}{}, "User logged out")
}

// RefreshAccessToken exchanges a refresh token for a new pair. The stored
// token is rotated so a replayed one is refused.
func (h *UserHandler) RefreshAccessToken(w http.ResponseWriter, r *http.Request) (err error) {
	defer func() { metrics.TokenRefreshes.WithLabelValues(outcome(err)).Inc() }()

	incoming := refreshTokenFromRequest(r)
	if incoming == "" {
		return utils.NewAPIError(http.StatusUnauthorized, msgUnauthorized)
	}

	claims, err := h.Tokens.ParseRefreshToken(incoming)
	if err != nil {
		return utils.NewAPIError(http.StatusUnauthorized, msgInvalidRefresh)
	}

	user, err := h.Store.FindByID(r.Context(), claims.Subject)
	if errors.Is(err, services.ErrUserNotFound) {
		return utils.NewAPIError(http.StatusUnauthorized, msgInvalidRefresh)
	}
	if err != nil {
		return err
	}

	if user.RefreshToken == "" || subtle.ConstantTimeCompare([]byte(incoming), []byte(user.RefreshToken)) != 1 {
		return utils.NewAPIError(http.StatusUnauthorized, msgRefreshExpired)
	}

	pair, err := h.issueTokens(r, user)
	if err != nil {
		return err
	}

	h.setAuthCookies(w, pair)
	return utils.WriteSuccess(w, http.StatusOK, pair, "Access token refreshed")
}

func (h *UserHandler) CurrentUser(w http.ResponseWriter, r *http.Request) error {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		return utils.NewAPIError(http.StatusUnauthorized, msgUnauthorized)
	}
	return utils.WriteSuccess(w, http.StatusOK, user.Public(), "Current user fetched successfully")
}

// issueTokens mints a pair and stores the refresh token on the user record.
func (h *UserHandler) issueTokens(r *http.Request, user *models.User) (services.TokenPair, error) {
	pair, err := h.Tokens.GeneratePair(user)
	if err == nil {
		err = h.Store.SetRefreshToken(r.Context(), user.ID, pair.RefreshToken)
	}
	if err != nil {
		h.Logger.ErrorContext(r.Context(), "token issue failed",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
		return services.TokenPair{}, utils.NewAPIError(http.StatusInternalServerError, msgTokenFailed)
	}
	user.RefreshToken = pair.RefreshToken
	return pair, nil
}

func (h *UserHandler) cookie(name, value string, maxAge time.Duration) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   h.Cookies.Domain,
		HttpOnly: true,
		Secure:   true,
		SameSite: h.Cookies.SameSite,
	}
	if maxAge < 0 {
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
	} else {
		c.MaxAge = int(maxAge.Seconds())
	}
	return c
}

func (h *UserHandler) setAuthCookies(w http.ResponseWriter, pair services.TokenPair) {
	http.SetCookie(w, h.cookie(AccessTokenCookie, pair.AccessToken, h.Tokens.AccessTTL()))
	http.SetCookie(w, h.cookie(RefreshTokenCookie, pair.RefreshToken, h.Tokens.RefreshTTL()))
}

func (h *UserHandler) clearAuthCookies(w http.ResponseWriter) {
	http.SetCookie(w, h.cookie(AccessTokenCookie, "", -1))
	http.SetCookie(w, h.cookie(RefreshTokenCookie, "", -1))
}

// decodeBody fills v from a JSON body or, for form posts, from form values.
// An empty body leaves v untouched.
func decodeBody(r *http.Request, v *loginRequest) error {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/x-www-form-urlencoded" || ct == "multipart/form-data" {
		v.Email = r.FormValue("email")
		v.Username = r.FormValue("username")
		v.Password = r.FormValue("password")
		return nil
	}

	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return utils.NewAPIError(http.StatusBadRequest, "Invalid request body")
	}
	return nil
}

func refreshTokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(RefreshTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}

	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		_ = json.NewDecoder(r.Body).Decode(&body)
		return strings.TrimSpace(body.RefreshToken)
	}
	return strings.TrimSpace(r.FormValue("refreshToken"))
}
