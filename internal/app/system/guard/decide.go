// internal/app/system/guard/decide.go
package guard

import (
	"github.com/dalemusser/saasgate/internal/app/system/authz"
	"github.com/dalemusser/saasgate/internal/app/system/roles"
	"go.uber.org/zap"
)

// Browser paths the guard redirects to.
const (
	SignInPath     = "/auth"
	OnboardingPath = "/onboarding"
	DeniedPath     = "/unauthorized"
)

// Destination describes a guarded page.
type Destination struct {
	Path       string
	RequireOrg bool
	// MinRole, when set, must be held in the current organization. It
	// implies RequireOrg.
	MinRole roles.Role
}

// Action is what the caller should do with a navigation.
type Action int

const (
	Render Action = iota
	RedirectSignIn
	RedirectOnboarding
	RedirectDenied
	Wait
	Error
)

func (a Action) String() string {
	switch a {
	case Render:
		return "render"
	case RedirectSignIn:
		return "redirect_sign_in"
	case RedirectOnboarding:
		return "redirect_onboarding"
	case RedirectDenied:
		return "redirect_denied"
	case Wait:
		return "wait"
	case Error:
		return "error"
	}
	return "unknown"
}

// Decision is the outcome of Decide. Location is set for redirects; Err is
// set for Error.
type Decision struct {
	Action   Action
	Location string
	Err      error
}

// Decide evaluates a navigation to dest. A failed minimum-role check moves
// AuthenticatedWithOrg to Denied; a passing navigation moves Denied back.
func (g *Guard) Decide(dest Destination) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.state {
	case Loading:
		return Decision{Action: Wait}
	case Failed:
		return Decision{Action: Error, Err: g.lastErr}
	case Unauthenticated:
		return Decision{Action: RedirectSignIn, Location: SignInPath}
	}

	needsOrg := dest.RequireOrg || dest.MinRole != ""
	if needsOrg && g.state == AuthenticatedNoOrg {
		return Decision{Action: RedirectOnboarding, Location: OnboardingPath}
	}

	if dest.MinRole != "" {
		if !authz.New(g.res).HasMinimumRole(dest.MinRole) {
			g.state = Denied
			g.log.Info("navigation denied",
				zap.String("path", dest.Path),
				zap.String("user_id", g.profile.ID),
				zap.String("required", string(dest.MinRole)))
			return Decision{Action: RedirectDenied, Location: DeniedPath}
		}
	}

	if g.state == Denied {
		g.state = AuthenticatedWithOrg
	}
	return Decision{Action: Render}
}
