package tool

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kadirpekel/cocode/internal/protocol"
)

func TestApprovalCache_RememberedPrefixCoversFutureMatches(t *testing.T) {
	cache := NewApprovalCache()
	req := protocol.ApprovalRequest{
		RequestID:     "req-1",
		ToolName:      "Bash",
		CachePrefix:   "git *",
		AllowRemember: true,
	}
	assert.False(t, cache.IsApproved(req))

	cache.Approve(req)
	assert.True(t, cache.IsApproved(req))

	other := protocol.ApprovalRequest{RequestID: "req-2", ToolName: "Bash", CachePrefix: "git *"}
	assert.True(t, cache.IsApproved(other))
}

func TestApprovalCache_WithoutRememberCoversOnlyExactRequest(t *testing.T) {
	cache := NewApprovalCache()
	req := protocol.ApprovalRequest{RequestID: "req-1", ToolName: "Bash", CachePrefix: "git *"}
	cache.Approve(req)

	assert.True(t, cache.IsApproved(req))
	other := protocol.ApprovalRequest{RequestID: "req-2", ToolName: "Bash", CachePrefix: "git *"}
	assert.False(t, cache.IsApproved(other))
}

func TestApprovalCache_ClearPrefixRevokesFutureMatches(t *testing.T) {
	cache := NewApprovalCache()
	req := protocol.ApprovalRequest{RequestID: "req-1", ToolName: "Bash", CachePrefix: "git *", AllowRemember: true}
	cache.Approve(req)

	cache.ClearPrefix("Bash", "git *")
	assert.False(t, cache.IsApproved(protocol.ApprovalRequest{RequestID: "req-2", ToolName: "Bash", CachePrefix: "git *"}))
}
