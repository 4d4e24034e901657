package naver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		ClientID:     "cid",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/cb",
		ProfileURL:   srv.URL + "/v1/nid/me",
		TokenURL:     srv.URL + "/oauth2.0/token",
		AuthURL:      srv.URL + "/oauth2.0/authorize",
	}, srv.Client())
}

func TestFetchProfile_Success(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer good-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"resultcode":"00","message":"success","response":{"id":"abc123","email":"u@naver.com","nickname":"닉","profile_image":"https://img/x.png","age":"20-29"}}`))
	})

	p, err := c.FetchProfile(context.Background(), "good-token")
	require.NoError(t, err)
	assert.Equal(t, "abc123", p.ID)
	assert.Equal(t, "u@naver.com", p.Email)
	assert.Equal(t, "닉", p.DisplayName())
	assert.Equal(t, "20-29", p.Raw["age"])
}

func TestFetchProfile_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"401", http.StatusUnauthorized, `{"resultcode":"024","message":"Authentication failed"}`, ErrTokenRejected},
		{"403", http.StatusForbidden, `{}`, ErrTokenRejected},
		{"non-00 resultcode", http.StatusOK, `{"resultcode":"024","message":"Authentication failed"}`, ErrTokenRejected},
		{"server error", http.StatusInternalServerError, `oops`, ErrUnavailable},
		{"garbage", http.StatusOK, `not json`, ErrUnavailable},
		{"missing id", http.StatusOK, `{"resultcode":"00","response":{"email":"a@b.c"}}`, ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := c.FetchProfile(context.Background(), "token")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFetchProfile_EmptyToken(t *testing.T) {
	c := NewClient(Config{}, nil)
	_, err := c.FetchProfile(context.Background(), "")
	assert.ErrorIs(t, err, ErrTokenRejected)
}

func TestAuthCodeURL(t *testing.T) {
	c := NewClient(Config{ClientID: "cid", RedirectURL: "http://localhost/cb"}, nil)

	u, err := url.Parse(c.AuthCodeURL("state-1"))
	require.NoError(t, err)
	assert.Equal(t, "nid.naver.com", u.Host)
	assert.Equal(t, "cid", u.Query().Get("client_id"))
	assert.Equal(t, "state-1", u.Query().Get("state"))
	assert.Equal(t, "code", u.Query().Get("response_type"))
}

func TestExchange(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.Equal(t, "st", r.PostForm.Get("state"))
		assert.Equal(t, "cid", r.PostForm.Get("client_id"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"AT","refresh_token":"RT","token_type":"bearer","expires_in":3600}`))
	})

	token, err := c.Exchange(context.Background(), "the-code", "st")
	require.NoError(t, err)
	assert.Equal(t, "AT", token)
}
