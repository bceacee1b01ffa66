package strategy

import (
	"strconv"
	"strings"

	"github.com/toggleworks/unleash-client-go/model"
)

// Stickiness values understood by FlexibleRolloutStrategy. Any other value names a context field.
const (
	StickinessDefault   = model.StickinessDefault
	StickinessUserID    = "userId"
	StickinessSessionID = "sessionId"
	StickinessRandom    = "random"
)

// GradualRolloutUserIDStrategy is active for a stable percentage of users, bucketed by user id.
type GradualRolloutUserIDStrategy struct{}

//nolint:revive // no doc comment for standard method
func (GradualRolloutUserIDStrategy) Name() string { return "gradualRolloutUserId" }

//nolint:revive // no doc comment for standard method
func (GradualRolloutUserIDStrategy) IsEnabled(params map[string]string, ctx model.Context) bool {
	return inRollout(ctx.UserID, params[ParamGroupID], percentageParam(params, ParamPercentage))
}

// GradualRolloutSessionIDStrategy is active for a stable percentage of sessions.
type GradualRolloutSessionIDStrategy struct{}

//nolint:revive // no doc comment for standard method
func (GradualRolloutSessionIDStrategy) Name() string { return "gradualRolloutSessionId" }

//nolint:revive // no doc comment for standard method
func (GradualRolloutSessionIDStrategy) IsEnabled(params map[string]string, ctx model.Context) bool {
	return inRollout(ctx.SessionID, params[ParamGroupID], percentageParam(params, ParamPercentage))
}

// GradualRolloutRandomStrategy is active for a random percentage of evaluations.
type GradualRolloutRandomStrategy struct{}

//nolint:revive // no doc comment for standard method
func (GradualRolloutRandomStrategy) Name() string { return "gradualRolloutRandom" }

//nolint:revive // no doc comment for standard method
func (GradualRolloutRandomStrategy) IsEnabled(params map[string]string, _ model.Context) bool {
	percentage := percentageParam(params, ParamPercentage)
	return percentage > 0 && RandomValue(DefaultNormalizer) <= percentage
}

// FlexibleRolloutStrategy is active for a percentage of contexts bucketed by a configurable
// stickiness field.
//
// With "default" stickiness the user id is used if present, then the session id, then a random
// value. A stickiness naming a context field that the context does not carry makes the strategy
// inactive.
type FlexibleRolloutStrategy struct{}

//nolint:revive // no doc comment for standard method
func (FlexibleRolloutStrategy) Name() string { return "flexibleRollout" }

//nolint:revive // no doc comment for standard method
func (FlexibleRolloutStrategy) IsEnabled(params map[string]string, ctx model.Context) bool {
	value, ok := StickinessValue(params[ParamStickiness], ctx)
	if !ok {
		return false
	}
	return inRollout(value, params[ParamGroupID], percentageParam(params, ParamRollout))
}

// StickinessValue resolves the hash key for the given stickiness setting. An empty setting is the
// same as "default", which never fails because it falls back to a random value.
func StickinessValue(stickiness string, ctx model.Context) (string, bool) {
	switch stickiness {
	case "", StickinessDefault:
		switch {
		case ctx.UserID != "":
			return ctx.UserID, true
		case ctx.SessionID != "":
			return ctx.SessionID, true
		default:
			return RandomStickiness(), true
		}
	case StickinessRandom:
		return RandomStickiness(), true
	default:
		value, ok := ctx.Field(stickiness)
		if !ok || value == "" {
			return "", false
		}
		return value, true
	}
}

func inRollout(id, groupID string, percentage int) bool {
	if id == "" || percentage <= 0 {
		return false
	}
	return int(NormalizedValue(id, groupID, DefaultNormalizer)) <= percentage
}

// percentageParam reads a whole-number percentage; anything unparseable counts as 0.
func percentageParam(params map[string]string, name string) int {
	raw := strings.TrimSpace(params[name])
	if raw == "" {
		return 0
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return int(f)
	}
	return 0
}
