package handlers

import (
	"errors"
	"net/http"

	"devdesk/internal/service"

	"github.com/gin-gonic/gin"
)

// Single, shared credentials payload for both register and login forms.
type authCredentials struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// bindFormOrBadRequest binds the form body into dst and writes a plain 400 on failure.
// Returns false if the request was already handled.
func (h *Handler) bindFormOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBind(dst); err != nil {
		if h.log != nil {
			h.log.Infow("auth_bad_request_body", "err", err)
		}
		c.String(http.StatusBadRequest, service.ErrInvalidInput.Error())
		return false
	}
	return true
}

func (h *Handler) registerPage(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", nil)
}

func (h *Handler) loginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", nil)
}

// @Summary      Register a user
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      plain
// @Param        username  formData  string  true  "Username"
// @Param        password  formData  string  true  "Password"
// @Success      302
// @Failure      400  {string}  string
// @Failure      500  {string}  string
// @Router       /register [post]
func (h *Handler) register(c *gin.Context) {
	var input authCredentials
	if ok := h.bindFormOrBadRequest(c, &input); !ok {
		return
	}

	if _, err := h.services.SignUp(input.Username, input.Password); err != nil {
		if h.log != nil {
			h.log.Infow("auth_sign_up_failed", "username", input.Username, "err", err)
		}
		switch {
		case errors.Is(err, service.ErrDuplicateUser), errors.Is(err, service.ErrInvalidInput),
			errors.Is(err, service.ErrPasswordTooLong):
			c.String(http.StatusBadRequest, err.Error())
		default:
			c.String(http.StatusInternalServerError, "registration failed")
		}
		return
	}

	c.Redirect(http.StatusFound, "/login")
}

// @Summary      Log in
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      plain
// @Param        username  formData  string  true  "Username"
// @Param        password  formData  string  true  "Password"
// @Success      302
// @Failure      400  {string}  string
// @Failure      401  {string}  string
// @Router       /login [post]
func (h *Handler) login(c *gin.Context) {
	var input authCredentials
	if ok := h.bindFormOrBadRequest(c, &input); !ok {
		return
	}

	user, err := h.services.Authenticate(input.Username, input.Password)
	if err != nil {
		if h.log != nil {
			h.log.Infow("auth_sign_in_failed", "username", input.Username, "err", err)
		}
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.String(http.StatusUnauthorized, service.ErrInvalidCredentials.Error())
			return
		}
		c.String(http.StatusInternalServerError, "login failed")
		return
	}

	sess, token, err := h.services.Sessions.Create(user.Username)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("session_create_failed", "username", user.Username, "err", err)
		}
		c.String(http.StatusInternalServerError, "login failed")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, int(sess.ExpiresAt.Sub(sess.CreatedAt).Seconds()), "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}

// @Summary      Log out
// @Tags         auth
// @Success      302
// @Router       /logout [get]
func (h *Handler) logout(c *gin.Context) {
	if token, err := c.Cookie(sessionCookie); err == nil && token != "" {
		h.services.Sessions.Destroy(token)
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/login")
}
