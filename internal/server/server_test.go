package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"anoa.com/communityrewards/internal/config"
	"anoa.com/communityrewards/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestServer(t *testing.T) (*Server, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?_busy_timeout=10000&_txlock=immediate",
		filepath.Join(t.TempDir(), "rewards.db"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Post{},
		&model.RewardEvent{},
		&model.PointLog{},
		&model.UserBalance{},
	))

	cfg := &config.Config{
		AppEnv:         "test",
		Port:           "0",
		JWTSecret:      "test-secret",
		JWTTTL:         time.Hour,
		RewardTimezone: "Asia/Jakarta",
		RateLimitAward: time.Second,
	}

	srv, err := NewServer(db, nil, cfg)
	require.NoError(t, err)
	return srv, db
}

func createUserWithPost(t *testing.T, db *gorm.DB, username, password string) (model.User, model.Post) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := model.User{Username: username, Email: username + "@example.com", PasswordHash: string(hash)}
	require.NoError(t, db.Create(&user).Error)

	post := model.Post{UserID: user.ID, Title: "t", Content: "c"}
	require.NoError(t, db.Create(&post).Error)
	return user, post
}

func doJSON(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	srv.engine.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, srv *Server, email, password string) string {
	t.Helper()

	rec := doJSON(t, srv, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestAwardFlowOverHTTP(t *testing.T) {
	srv, db := newTestServer(t)
	require.NoError(t, db.Create(&model.RewardEvent{
		TriggerType: "community_post",
		Active:      true,
		Condition:   model.ConditionFirstOnly,
		Points:      500,
	}).Error)

	_, post := createUserWithPost(t, db, "alice", "password123")
	token := login(t, srv, "alice@example.com", "password123")

	awardBody := gin.H{"trigger_type": "community_post", "subject_id": post.ID.String()}

	// No token: rejected before the service runs.
	rec := doJSON(t, srv, http.MethodPost, "/api/rewards/award", "", awardBody)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/rewards/award", token, awardBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var award struct {
		Awarded bool   `json:"awarded"`
		Points  int    `json:"points"`
		LogID   string `json:"log_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &award))
	assert.True(t, award.Awarded)
	assert.Equal(t, 500, award.Points)
	assert.NotEmpty(t, award.LogID)

	// Replay of the same request: success, nothing granted.
	rec = doJSON(t, srv, http.MethodPost, "/api/rewards/award", token, awardBody)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &award))
	assert.False(t, award.Awarded)

	rec = doJSON(t, srv, http.MethodGet, "/api/rewards/balance", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var balance struct {
		Points int64 `json:"points"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &balance))
	assert.Equal(t, int64(500), balance.Points)
}

func TestAwardForbiddenForStranger(t *testing.T) {
	srv, db := newTestServer(t)
	require.NoError(t, db.Create(&model.RewardEvent{
		TriggerType: "community_post",
		Active:      true,
		Condition:   model.ConditionFirstOnly,
		Points:      500,
	}).Error)

	_, alicePost := createUserWithPost(t, db, "alice", "password123")
	createUserWithPost(t, db, "bob", "password456")
	bobToken := login(t, srv, "bob@example.com", "password456")

	rec := doJSON(t, srv, http.MethodPost, "/api/rewards/award", bobToken, gin.H{
		"trigger_type": "community_post",
		"subject_id":   alicePost.ID.String(),
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var entries int64
	require.NoError(t, db.Model(&model.PointLog{}).Count(&entries).Error)
	assert.Equal(t, int64(0), entries)
}

func TestAwardValidation(t *testing.T) {
	srv, db := newTestServer(t)
	createUserWithPost(t, db, "alice", "password123")
	token := login(t, srv, "alice@example.com", "password123")

	// Missing trigger_type fails binding.
	rec := doJSON(t, srv, http.MethodPost, "/api/rewards/award", token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown trigger with no campaign: success shape, nothing awarded.
	rec = doJSON(t, srv, http.MethodPost, "/api/rewards/award", token, gin.H{
		"trigger_type": "mystery_action",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var award struct {
		Awarded bool `json:"awarded"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &award))
	assert.False(t, award.Awarded)
}

func TestLeaderboardIsPublic(t *testing.T) {
	srv, db := newTestServer(t)
	require.NoError(t, db.Create(&model.RewardEvent{
		TriggerType: "community_post",
		Active:      true,
		Condition:   model.ConditionFirstOnly,
		Points:      500,
	}).Error)

	_, post := createUserWithPost(t, db, "alice", "password123")
	token := login(t, srv, "alice@example.com", "password123")
	rec := doJSON(t, srv, http.MethodPost, "/api/rewards/award", token, gin.H{
		"trigger_type": "community_post",
		"subject_id":   post.ID.String(),
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/rewards/leaderboard?limit=5", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data []struct {
			Position int    `json:"position"`
			Username string `json:"username"`
			Points   int64  `json:"points"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "alice", resp.Data[0].Username)
	assert.Equal(t, int64(500), resp.Data[0].Points)
}
