package tool

import (
	"sync"

	"github.com/kadirpekel/cocode/internal/protocol"
)

// ApprovalCache remembers human approval decisions against a request's
// CachePrefix (e.g. "git *" for any Bash command starting "git "), so a
// session doesn't re-prompt for every matching call once one has been
// approved. Decisions are cleared by ClearSession or ClearPrefix, never
// by time.
type ApprovalCache struct {
	mu       sync.RWMutex
	approved map[string]struct{}
}

func NewApprovalCache() *ApprovalCache {
	return &ApprovalCache{approved: make(map[string]struct{})}
}

// IsApproved reports whether req's cache prefix (or its exact RequestID,
// for one-off approvals that opted out of remembering) has already been
// approved.
func (c *ApprovalCache) IsApproved(req protocol.ApprovalRequest) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.approved[req.RequestID]; ok {
		return true
	}
	if req.CachePrefix == "" {
		return false
	}
	_, ok := c.approved[cacheKey(req.ToolName, req.CachePrefix)]
	return ok
}

// Approve records a human's decision. When req.AllowRemember is true and
// a CachePrefix is set, the decision covers every future call matching
// that prefix; otherwise it covers only this exact request.
func (c *ApprovalCache) Approve(req protocol.ApprovalRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if req.AllowRemember && req.CachePrefix != "" {
		c.approved[cacheKey(req.ToolName, req.CachePrefix)] = struct{}{}
		return
	}
	c.approved[req.RequestID] = struct{}{}
}

func (c *ApprovalCache) ClearSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.approved = make(map[string]struct{})
}

func (c *ApprovalCache) ClearPrefix(toolName, prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.approved, cacheKey(toolName, prefix))
}

func cacheKey(toolName, prefix string) string { return toolName + "\x00" + prefix }
