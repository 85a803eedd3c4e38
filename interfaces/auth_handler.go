package interfaces

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"devconnect/service"
)

func (h *HTTPHandler) Register(c *gin.Context) {
	var req service.RegisterInput
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.Svc.Auth.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"access_token": session.AccessToken,
		"user":         session.User.ToMap(),
	})
}

func (h *HTTPHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.Svc.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token": session.AccessToken,
		"user":         session.User.ToMap(),
	})
}

func (h *HTTPHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": currentUser(c).ToMap()})
}

func (h *HTTPHandler) VerifyToken(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"valid": true, "user_id": currentUser(c).ID})
}

// Logout is stateless; clients drop the token.
func (h *HTTPHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

func (h *HTTPHandler) ChangePassword(c *gin.Context) {
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if !bindJSON(c, &req) {
		return
	}

	if err := h.Svc.Auth.ChangePassword(c.Request.Context(), currentUser(c).ID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}
