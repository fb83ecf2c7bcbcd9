package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/agency-hub/internal/constants"
	"github.com/yukikurage/agency-hub/internal/models"
	"github.com/yukikurage/agency-hub/internal/token"
	"gorm.io/gorm"
)

type stubUsers map[uint64]*models.User

func (s stubUsers) FindByID(id uint64) (*models.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func uptr(v uint64) *uint64 { return &v }

func newAuthRouter(tokens *token.Manager, users stubUsers, gates ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))

	// Stores a token in the session the way the login handler does.
	r.POST("/login/:email", func(c *gin.Context) {
		for _, u := range users {
			if u.Email != c.Param("email") {
				continue
			}
			signed, err := tokens.Issue(u)
			if err != nil {
				c.Status(http.StatusInternalServerError)
				return
			}
			session := sessions.Default(c)
			session.Set(constants.SessionKeyToken, signed)
			_ = session.Save()
		}
		c.Status(http.StatusNoContent)
	})

	handlers := append([]gin.HandlerFunc{RequireAuth(tokens, users)}, gates...)
	handlers = append(handlers, func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"role": p.Role, "agencyId": p.AgencyID})
	})
	r.GET("/protected", handlers...)
	return r
}

func get(r http.Handler, bearer string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth_Bearer(t *testing.T) {
	tokens := token.NewManager("secret", time.Hour)
	owner := &models.User{ID: 1, Email: "owner", Role: models.RoleOwner, AgencyID: uptr(3), IsActive: true}
	r := newAuthRouter(tokens, stubUsers{1: owner})

	signed, err := tokens.Issue(owner)
	require.NoError(t, err)

	w := get(r, signed)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"owner"`)
}

func TestRequireAuth_UsesCurrentUserRecord(t *testing.T) {
	tokens := token.NewManager("secret", time.Hour)
	user := &models.User{ID: 1, Email: "user", Role: models.RoleOwner, IsActive: true}
	signed, err := tokens.Issue(user)
	require.NoError(t, err)

	// The role changed after the token was issued.
	user.Role = models.RoleMember
	user.AgencyID = uptr(5)
	r := newAuthRouter(tokens, stubUsers{1: user})

	w := get(r, signed)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"member"`)
	assert.Contains(t, w.Body.String(), `"agencyId":5`)
}

func TestRequireAuth_SessionCookie(t *testing.T) {
	tokens := token.NewManager("secret", time.Hour)
	owner := &models.User{ID: 1, Email: "owner", Role: models.RoleOwner, IsActive: true}
	r := newAuthRouter(tokens, stubUsers{1: owner})

	login := httptest.NewRecorder()
	r.ServeHTTP(login, httptest.NewRequest(http.MethodPost, "/login/owner", nil))
	require.Equal(t, http.StatusNoContent, login.Code)
	cookies := login.Result().Cookies()
	require.NotEmpty(t, cookies)

	w := get(r, "", cookies...)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAuth_Rejections(t *testing.T) {
	tokens := token.NewManager("secret", time.Hour)
	inactive := &models.User{ID: 2, Email: "inactive", Role: models.RoleMember, IsActive: false}
	r := newAuthRouter(tokens, stubUsers{2: inactive})

	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "not-a-token").Code)

	other := token.NewManager("other-secret", time.Hour)
	forged, err := other.Issue(inactive)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, forged).Code)

	ghost, err := tokens.Issue(&models.User{ID: 99, Role: models.RoleOwner})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, ghost).Code)

	signed, err := tokens.Issue(inactive)
	require.NoError(t, err)
	w := get(r, signed)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "ACCOUNT_INACTIVE")
}

func TestRequireOwnerAndTeam(t *testing.T) {
	tokens := token.NewManager("secret", time.Hour)
	owner := &models.User{ID: 1, Email: "owner", Role: models.RoleOwner, AgencyID: uptr(3), IsActive: true}
	member := &models.User{ID: 2, Email: "member", Role: models.RoleMember, AgencyID: uptr(3), IsActive: true}
	client := &models.User{ID: 3, Email: "client", Role: models.RoleClient, AgencyID: uptr(3), ClientID: uptr(8), IsActive: true}
	users := stubUsers{1: owner, 2: member, 3: client}

	issue := func(u *models.User) string {
		signed, err := tokens.Issue(u)
		require.NoError(t, err)
		return signed
	}

	ownerOnly := newAuthRouter(tokens, users, RequireOwner())
	assert.Equal(t, http.StatusOK, get(ownerOnly, issue(owner)).Code)
	w := get(ownerOnly, issue(member))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Owner access required")

	team := newAuthRouter(tokens, users, RequireTeam())
	assert.Equal(t, http.StatusOK, get(team, issue(owner)).Code)
	assert.Equal(t, http.StatusOK, get(team, issue(member)).Code)
	w = get(team, issue(client))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Team access required")
}

func TestGetUserID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := GetUserID(c)
	assert.False(t, ok)

	c.Set(constants.ContextKeyUserID, uint64(12))
	id, ok := GetUserID(c)
	assert.True(t, ok)
	assert.Equal(t, uint64(12), id)

	c.Set(constants.ContextKeyUserID, -1)
	_, ok = GetUserID(c)
	assert.False(t, ok)
}
