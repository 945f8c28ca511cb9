package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbertin/auction-desk/internal/model"
)

func TestGetSendsBearerToken(t *testing.T) {
	var gotAuth, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		json.NewEncoder(w).Encode(map[string]string{"ok": "yes"})
	}))
	defer server.Close()

	c := NewClient(server.URL, "secret-token", 5*time.Second)

	var result map[string]string
	require.NoError(t, c.Get(context.Background(), "/ping", &result))

	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, "yes", result["ok"])
}

func TestNoAuthHeaderWithoutToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	c := NewClient(server.URL, "", 5*time.Second)
	require.NoError(t, c.Get(context.Background(), "/ping", nil))
	assert.Empty(t, gotAuth)
}

func TestUnauthorizedReturnsAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := NewClient(server.URL, "stale", 5*time.Second)
	err := c.Get(context.Background(), "/users", nil)

	require.Error(t, err)
	assert.True(t, IsAuthError(err))
}

func TestErrorEnvelopeBecomesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{
			"message": "category still has listings",
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, "t", 5*time.Second)
	err := c.Delete(context.Background(), "/categories/3")

	require.Error(t, err)
	assert.Equal(t, "category still has listings", Reason(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
}

func TestReasonFallsBackToErrorText(t *testing.T) {
	assert.Equal(t, "", Reason(nil))
	assert.Equal(t, "plain failure", Reason(errors.New("plain failure")))
}

func TestRateLimitRetriesWithRetryAfter(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"id": 1}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "t", 5*time.Second)

	var result struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, c.Get(context.Background(), "/listings/1", &result))
	assert.Equal(t, 2, calls)
	assert.Equal(t, int64(1), result.ID)
}

func TestPostRebuildsBodyOnRetry(t *testing.T) {
	var bodies []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		bodies = append(bodies, string(buf))
		if len(bodies) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "t", 5*time.Second)
	err := c.Post(context.Background(), "/listings", map[string]string{"name": "Clock"}, nil)

	require.NoError(t, err)
	require.Len(t, bodies, 2)
	assert.Equal(t, bodies[0], bodies[1], "retry must resend the full body")
}

func TestNoContentSkipsDecoding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := NewClient(server.URL, "t", 5*time.Second)
	var result map[string]string
	require.NoError(t, c.Get(context.Background(), "/noop", &result))
	assert.Nil(t, result)
}

func TestLoginParsesSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)

		var creds Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "alice@example.com", creds.Email)

		json.NewEncoder(w).Encode(Session{
			Token: "fresh-token",
			User:  model.User{ID: 1, Alias: "alice", Admin: true},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, "", 5*time.Second)
	session, err := c.Login(context.Background(), Credentials{
		Email:    "alice@example.com",
		Password: "hunter2",
	})

	require.NoError(t, err)
	assert.Equal(t, "fresh-token", session.Token)
	assert.True(t, session.User.Admin)
}

func TestPlaceBidHitsListingPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/listings/42/bids", r.URL.Path)
		json.NewEncoder(w).Encode(model.Bid{ID: 7, ListingID: 42, Amount: 25})
	}))
	defer server.Close()

	c := NewClient(server.URL, "t", 5*time.Second)
	bid, err := c.PlaceBid(context.Background(), 42, 25)

	require.NoError(t, err)
	assert.Equal(t, int64(7), bid.ID)
	assert.Equal(t, float64(25), bid.Amount)
}

func TestCreateListingPostsPayload(t *testing.T) {
	endsAt := time.Date(2026, 9, 15, 18, 0, 0, 0, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/listings", r.URL.Path)

		var in NewListing
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "Clock", in.Name)
		assert.Equal(t, float64(5), in.StartPrice)

		json.NewEncoder(w).Encode(model.Listing{ID: 3, Name: in.Name, EndsAt: in.EndsAt})
	}))
	defer server.Close()

	c := NewClient(server.URL, "t", 5*time.Second)
	listing, err := c.CreateListing(context.Background(), NewListing{
		Name:        "Clock",
		Description: "an old clock",
		CategoryID:  1,
		StartPrice:  5,
		EndsAt:      endsAt,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(3), listing.ID)
	assert.True(t, listing.EndsAt.Equal(endsAt))
}

func TestListingAndBidsPaths(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/listings/5":
			json.NewEncoder(w).Encode(model.Listing{ID: 5, Name: "Vase"})
		case "/listings/5/bids":
			json.NewEncoder(w).Encode([]model.Bid{{ID: 1, ListingID: 5, Amount: 12}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := NewClient(server.URL, "t", 5*time.Second)

	listing, err := c.Listing(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "Vase", listing.Name)

	bids, err := c.Bids(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, bids, 1)
	assert.Equal(t, float64(12), bids[0].Amount)
}

func TestSendMessagePostsSubjectAndBody(t *testing.T) {
	var got map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	c := NewClient(server.URL, "t", 5*time.Second)
	require.NoError(t, c.SendMessage(context.Background(), "Hello", "I have a question"))

	assert.Equal(t, "Hello", got["subject"])
	assert.Equal(t, "I have a question", got["body"])
}

func TestUserFetchesOneAccount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/4", r.URL.Path)
		json.NewEncoder(w).Encode(model.User{ID: 4, Alias: "dora"})
	}))
	defer server.Close()

	c := NewClient(server.URL, "t", 5*time.Second)
	user, err := c.User(context.Background(), 4)

	require.NoError(t, err)
	assert.Equal(t, "dora", user.Alias)
}

func TestBlockUserHitsUserPath(t *testing.T) {
	var gotPath, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		json.NewEncoder(w).Encode(model.User{ID: 9, Blocked: true})
	}))
	defer server.Close()

	c := NewClient(server.URL, "t", 5*time.Second)
	require.NoError(t, c.BlockUser(context.Background(), 9))

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/users/9/block", gotPath)
}
