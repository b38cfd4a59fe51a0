package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"ngolib/internal/mail"
	"ngolib/internal/payment"
	"ngolib/internal/profile"
	"ngolib/internal/search"
	"ngolib/internal/session"
	"ngolib/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

// Deps are the collaborators a Service is built from. Payments is optional;
// donations are recorded without a charge when it is nil.
type Deps struct {
	Users         UserStore
	NGOs          NGOStore
	Tags          TagStore
	Opportunities OpportunityStore
	Donations     DonationStore
	Subscriptions SubscriptionStore
	Followers     FollowerStore
	Admins        AdminStore
	Resets        ResetStore
	Contacts      ContactStore
	Images        profile.ImageStore
	Profiles      ProfileBuilder

	Sessions *session.Manager
	Limiter  *RateLimiter
	Mailer   mail.Sender
	Payments payment.Processor
}

type Service struct {
	logger *logrus.Logger
	config *types.Config

	users         UserStore
	ngos          NGOStore
	tags          TagStore
	opportunities OpportunityStore
	donations     DonationStore
	subscriptions SubscriptionStore
	followers     FollowerStore
	admins        AdminStore
	resets        ResetStore
	contacts      ContactStore
	images        profile.ImageStore
	profiles      ProfileBuilder

	sessions    *session.Manager
	searchState *search.Persister
	limiter     *RateLimiter
	mailer      mail.Sender
	payments    payment.Processor

	now func() time.Time

	server *http.Server
}

func New(config *types.Config, logger *logrus.Logger, deps Deps) (*Service, error) {
	if deps.Sessions == nil {
		return nil, fmt.Errorf("server needs a session manager")
	}

	mux := flow.New()

	s := &Service{
		logger: logger,
		config: config,

		users:         deps.Users,
		ngos:          deps.NGOs,
		tags:          deps.Tags,
		opportunities: deps.Opportunities,
		donations:     deps.Donations,
		subscriptions: deps.Subscriptions,
		followers:     deps.Followers,
		admins:        deps.Admins,
		resets:        deps.Resets,
		contacts:      deps.Contacts,
		images:        deps.Images,
		profiles:      deps.Profiles,

		sessions:    deps.Sessions,
		searchState: search.NewPersister(deps.Sessions),
		limiter:     deps.Limiter,
		mailer:      deps.Mailer,
		payments:    deps.Payments,

		now: time.Now,

		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	if s.limiter == nil {
		s.limiter = NewRateLimiter(logger, nil, PerMinute(config.RateLimitPerMinute))
	}

	s.buildRouter(mux)

	// slash stripping has to see the request before the mux matches a route
	s.server.Handler = s.LoggingMiddleware(s.StripTrailingSlash(mux))

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the routed handler, mainly for tests.
func (s *Service) Handler() http.Handler {
	return s.server.Handler
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	r.Group(func(r *flow.Mux) {
		r.Use(s.limiter.Handler)

		r.HandleFunc("/api/auth/signup", s.handleSignup, http.MethodPost)
		r.HandleFunc("/api/auth/login", s.handleLogin, http.MethodPost)
		r.HandleFunc("/api/auth/forgot-password", s.handleForgotPassword, http.MethodPost)
	})

	r.HandleFunc("/api/auth/me", s.handleMe, http.MethodGet)
	r.HandleFunc("/api/auth/find-user", s.handleFindUser, http.MethodPost)
	r.HandleFunc("/api/auth/reset-password", s.handleResetPassword, http.MethodPost)

	r.HandleFunc("/api/ngos", s.handleListNGOs, http.MethodGet)
	r.HandleFunc("/api/ngos/:id", s.handleNGODetail, http.MethodGet)
	r.HandleFunc("/api/opportunities", s.handleListOpportunities, http.MethodGet)
	r.HandleFunc("/api/search", s.handleSearch, http.MethodGet)

	r.HandleFunc("/api/contact/form", s.handleContactForm, http.MethodPost)

	r.HandleFunc("/api/auth/logout", s.handleLogout, http.MethodPost)

	// opportunity posting answers with {"error": ...} bodies, guards included
	r.Group(func(r *flow.Mux) {
		r.Use(s.requireSession(s.writeError))
		r.Use(s.requireRole(s.writeError, "Only NGOs can post opportunities", types.RoleNGO))

		r.HandleFunc("/api/postOpportunity", s.handlePostOpportunity, http.MethodPost)
	})

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireSession)

		r.HandleFunc("/api/profile", s.handleGetProfile, http.MethodGet)
		r.HandleFunc("/api/profile/image", s.handlePostProfileImage, http.MethodPost)
		r.HandleFunc("/api/profile/follow", s.handleFollow, http.MethodPost)
		r.HandleFunc("/api/profile/unfollow", s.handleUnfollow, http.MethodDelete)
		r.HandleFunc("/api/profile/unsubscribe", s.handleUnsubscribe, http.MethodDelete)
		r.HandleFunc("/api/payment", s.handlePayment, http.MethodPost)

		requireNGO := s.RequireRole("NGO access required", types.RoleNGO)
		r.Handle("/api/profile/ngo-contact", requireNGO(http.HandlerFunc(s.handleNGOContact)), http.MethodGet)

		r.Group(func(r *flow.Mux) {
			r.Use(s.RequireRole("Admin access required", types.RoleAdmin))

			r.HandleFunc("/api/admin/tag", s.handleAddTag, http.MethodPost)
			r.HandleFunc("/api/admin/delete-tag", s.handleDeleteTag, http.MethodPost)
			r.HandleFunc("/api/admin/subscriptions/:id/status", s.handleUpdateSubscriptionStatus, http.MethodPut)
			r.HandleFunc("/api/admin/actions", s.handleLogAction, http.MethodPost)
			r.HandleFunc("/api/admin/pending-ngos", s.handlePendingNGOs, http.MethodGet)
			r.HandleFunc("/api/admin/approve-ngo/:id", s.handleApproveNGO, http.MethodPost)
			r.HandleFunc("/api/admin/reject-ngo/:id", s.handleRejectNGO, http.MethodPost)
		})
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
