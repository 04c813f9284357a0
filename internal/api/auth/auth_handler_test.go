package auth

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/andrecf/recipebox/internal/api"
)

// MockService is a mock implementation of Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Register(ctx context.Context, username, email, password, confirmPassword string) error {
	args := m.Called(ctx, username, email, password, confirmPassword)
	return args.Error(0)
}

func (m *MockService) Login(ctx context.Context, username, password string) (string, error) {
	args := m.Called(ctx, username, password)
	return args.String(0), args.Error(1)
}

func setupAuthHandlerTest() (*HandlerImpl, *MockService) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mockService := new(MockService)
	return NewHandlerImpl(mockService, logger), mockService
}

func postForm(path string, form url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func TestHandlerImpl_PostCreateAccount(t *testing.T) {
	t.Run("success redirects to login", func(t *testing.T) {
		handler, mockService := setupAuthHandlerTest()
		mockService.On("Register", mock.Anything, "chef", "chef@example.com", "abc123", "abc123").
			Return(nil).Once()

		w := httptest.NewRecorder()
		handler.PostCreateAccount(w, postForm("/user/create_account/post", url.Values{
			"username":         {"chef"},
			"email":            {"chef@example.com"},
			"password":         {"abc123"},
			"confirm_password": {"abc123"},
		}))

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/user/login", w.Header().Get("Location"))
		mockService.AssertExpectations(t)
	})

	t.Run("username taken", func(t *testing.T) {
		handler, mockService := setupAuthHandlerTest()
		mockService.On("Register", mock.Anything, "chef", "chef@example.com", "abc123", "abc123").
			Return(api.ErrUsernameTaken).Once()

		w := httptest.NewRecorder()
		handler.PostCreateAccount(w, postForm("/user/create_account/post", url.Values{
			"username":         {"chef"},
			"email":            {"chef@example.com"},
			"password":         {"abc123"},
			"confirm_password": {"abc123"},
		}))

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "This username is taken")
	})

	t.Run("password mismatch", func(t *testing.T) {
		handler, mockService := setupAuthHandlerTest()
		mockService.On("Register", mock.Anything, "chef", "chef@example.com", "abc123", "abc124").
			Return(api.ErrPasswordMismatch).Once()

		w := httptest.NewRecorder()
		handler.PostCreateAccount(w, postForm("/user/create_account/post", url.Values{
			"username":         {"chef"},
			"email":            {"chef@example.com"},
			"password":         {"abc123"},
			"confirm_password": {"abc124"},
		}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("blank username gets its own message", func(t *testing.T) {
		handler, mockService := setupAuthHandlerTest()
		mockService.On("Register", mock.Anything, "", "chef@example.com", "abc123", "abc123").
			Return(api.ErrMissingCredentials).Once()

		w := httptest.NewRecorder()
		handler.PostCreateAccount(w, postForm("/user/create_account/post", url.Values{
			"email":            {"chef@example.com"},
			"password":         {"abc123"},
			"confirm_password": {"abc123"},
		}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "A username and password are required")
		assert.NotContains(t, w.Body.String(), "didn't match")
	})
}

func TestHandlerImpl_PostLogin(t *testing.T) {
	t.Run("success sets the session cookie and honors next", func(t *testing.T) {
		handler, mockService := setupAuthHandlerTest()
		mockService.On("Login", mock.Anything, "chef", "abc123").Return("signed-token", nil).Once()

		w := httptest.NewRecorder()
		handler.PostLogin(w, postForm("/user/login/post", url.Values{
			"username": {"chef"},
			"password": {"abc123"},
			"next":     {"/recipes/create_recipe"},
		}))

		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/recipes/create_recipe", w.Header().Get("Location"))

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, SessionCookieName, cookies[0].Name)
		assert.Equal(t, "signed-token", cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("absolute next falls back to the listing page", func(t *testing.T) {
		handler, mockService := setupAuthHandlerTest()
		mockService.On("Login", mock.Anything, "chef", "abc123").Return("signed-token", nil).Once()

		w := httptest.NewRecorder()
		handler.PostLogin(w, postForm("/user/login/post", url.Values{
			"username": {"chef"},
			"password": {"abc123"},
			"next":     {"https://evil.example.com/"},
		}))

		assert.Equal(t, "/get_recipes", w.Header().Get("Location"))
	})

	t.Run("unknown user", func(t *testing.T) {
		handler, mockService := setupAuthHandlerTest()
		mockService.On("Login", mock.Anything, "ghost", "abc123").Return("", api.ErrUserNotFound).Once()

		w := httptest.NewRecorder()
		handler.PostLogin(w, postForm("/user/login/post", url.Values{
			"username": {"ghost"},
			"password": {"abc123"},
		}))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "does not exist")
	})

	t.Run("wrong password", func(t *testing.T) {
		handler, mockService := setupAuthHandlerTest()
		mockService.On("Login", mock.Anything, "chef", "nope").Return("", api.ErrBadCredentials).Once()

		w := httptest.NewRecorder()
		handler.PostLogin(w, postForm("/user/login/post", url.Values{
			"username": {"chef"},
			"password": {"nope"},
		}))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Incorrect password")
	})
}

func TestHandlerImpl_Logout(t *testing.T) {
	handler, _ := setupAuthHandlerTest()

	w := httptest.NewRecorder()
	handler.Logout(w, httptest.NewRequest(http.MethodGet, "/user/logout", nil))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}
