package tool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckPlanMode_NotInPlanModeAllowsAnyPath(t *testing.T) {
	ctx := testContext()
	ctx.PlanMode = false
	assert.NoError(t, CheckPlanMode(ctx, "/repo/main.go"))
}

func TestCheckPlanMode_AllowsOnlyThePlanFile(t *testing.T) {
	ctx := testContext()
	ctx.PlanMode = true
	ctx.PlanFile = "/repo/PLAN.md"

	assert.NoError(t, CheckPlanMode(ctx, "/repo/PLAN.md"))
	assert.Error(t, CheckPlanMode(ctx, "/repo/main.go"))
}
