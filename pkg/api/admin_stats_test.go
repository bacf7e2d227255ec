package api_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdminStatsCounts(t *testing.T) {
	h := newTestRouter(t)

	// two threads, three messages total under the first one
	p1 := decodeMessage(t, postMessage(t, h, map[string]string{"content": "t1"}, "", "", nil, nickCookie("user1")))
	postMessage(t, h, map[string]string{"content": "t2"}, "", "", nil, nickCookie("user2"))
	for i := 0; i < 2; i++ {
		postMessage(t, h, map[string]string{"content": "r", "parentId": p1.ID}, "", "", nil, nickCookie("user2"))
	}
	doJSON(t, h, http.MethodPost, "/v1/admin/polls", `{"question":"q?","options":["a","b"]}`, adminCookie())
	doJSON(t, h, http.MethodPut, "/v1/admin/preferences/user1", `{"badges":["mod"]}`, adminCookie())

	rr := doJSON(t, h, http.MethodGet, "/v1/admin/stats", "", adminCookie())
	assert.Equal(t, http.StatusOK, rr.Code)

	var stats map[string]int
	err := json.Unmarshal(rr.Body.Bytes(), &stats)
	assert.NoError(t, err)

	assert.Contains(t, stats, "messages")
	assert.Contains(t, stats, "replies")
	assert.Equal(t, 2, stats["messages"])
	assert.Equal(t, 2, stats["replies"])
	assert.Equal(t, 1, stats["polls"])
	assert.Equal(t, 1, stats["preferences"])
}
