package handler

import (
	"github.com/hitoshi/dda/internal/auth"
	"github.com/hitoshi/dda/internal/session"
	"github.com/hitoshi/dda/internal/user"
)

// The domain services satisfy the handler interfaces directly; these checks
// keep the two sides from drifting apart.
var (
	_ LoginServiceInterface   = (*auth.Service)(nil)
	_ SessionServiceInterface = (*session.Store)(nil)
	_ UserServiceInterface    = (*user.Service)(nil)
)
