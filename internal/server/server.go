package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/bromleigh/mealboard/internal/backup"
	"github.com/bromleigh/mealboard/internal/email"
	"github.com/bromleigh/mealboard/internal/handler"
	"github.com/bromleigh/mealboard/internal/menugen"
	"github.com/bromleigh/mealboard/internal/middleware"
	"github.com/bromleigh/mealboard/internal/popularity"
	"github.com/bromleigh/mealboard/internal/push"
	"github.com/bromleigh/mealboard/internal/shopping"
	"github.com/bromleigh/mealboard/internal/store"
	ws "github.com/bromleigh/mealboard/internal/websocket"
)

// Config carries the optional integrations. Zero values leave the
// corresponding feature disabled; the core planner works without any of them.
type Config struct {
	MenuAIURL       string
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Backup          backup.Config
}

type Server struct {
	db         *sql.DB
	hub        *ws.Hub
	householdH *handler.HouseholdHandler
	menuH      *handler.MenuHandler
	recipeH    *handler.RecipeHandler
	planH      *handler.PlanHandler
	shoppingH  *handler.ShoppingHandler
	menuGenH   *handler.MenuGenHandler
	pushH      *handler.PushHandler
	backupH    *handler.BackupHandler
	logger     *slog.Logger
}

func New(db *sql.DB, cfg Config, emailClient *email.Client, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	householdStore := store.NewHouseholdStore(db)
	menuStore := store.NewMenuStore(db)
	recipeStore := store.NewRecipeStore(db)
	planStore := store.NewPlanStore(db)
	voteStore := store.NewVoteStore(db)
	shoppingStore := store.NewShoppingStore(db)
	prefsStore := store.NewPrefsStore(db)
	pushStore := store.NewPushStore(db)
	backupStore := store.NewBackupStore(db)

	engine := popularity.NewEngine(planStore, voteStore, menuStore, householdStore)
	generator := shopping.NewGenerator(planStore, recipeStore, menuStore, shoppingStore)

	pushLogger := logger.With("component", "push")
	var pushSvc *push.Service
	var pushH *handler.PushHandler
	var notifier *push.Notifier
	if cfg.VAPIDPublicKey != "" && cfg.VAPIDPrivateKey != "" {
		pushSvc = push.NewService(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey)
		notifier = push.NewNotifier(pushSvc, pushStore, pushLogger)
		pushH = handler.NewPushHandler(pushStore, pushSvc, pushLogger)
	}

	var adapter *menugen.Adapter
	if cfg.MenuAIURL != "" {
		adapter = menugen.NewAdapter(menugen.NewHTTPClient(cfg.MenuAIURL), planStore, menuStore, prefsStore)
	}

	backupMgr := backup.NewManager(cfg.Backup, db, backupStore)

	return &Server{
		db:         db,
		hub:        hub,
		householdH: handler.NewHouseholdHandler(householdStore, engine, hub, logger.With("component", "household")),
		menuH:      handler.NewMenuHandler(menuStore, hub, logger.With("component", "menu")),
		recipeH:    handler.NewRecipeHandler(recipeStore, menuStore, hub, logger.With("component", "recipe")),
		planH:      handler.NewPlanHandler(planStore, voteStore, menuStore, householdStore, engine, notifier, hub, logger.With("component", "plan")),
		shoppingH:  handler.NewShoppingHandler(shoppingStore, generator, emailClient, notifier, hub, logger.With("component", "shopping")),
		menuGenH:   handler.NewMenuGenHandler(adapter, prefsStore, hub, logger.With("component", "menugen")),
		pushH:      pushH,
		backupH:    handler.NewBackupHandler(backupMgr, backupStore, logger.With("component", "backup")),
		logger:     logger,
	}
}

// Hub returns the websocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /ws", ws.Handler(s.hub, s.logger.With("component", "ws_handler")))

	// Household API routes
	mux.HandleFunc("POST /api/households", s.householdH.Create)
	mux.HandleFunc("GET /api/households/{id}", s.householdH.Get)
	mux.HandleFunc("PUT /api/households/{id}/threshold", s.householdH.UpdateThreshold)
	mux.HandleFunc("POST /api/households/{id}/members", s.householdH.AddMember)
	mux.HandleFunc("GET /api/households/{id}/members", s.householdH.ListMembers)
	mux.HandleFunc("DELETE /api/members/{id}", s.householdH.RemoveMember)

	// Menu item API routes
	mux.HandleFunc("POST /api/menu-items", s.menuH.CreateItem)
	mux.HandleFunc("GET /api/menu-items", s.menuH.ListItems)
	mux.HandleFunc("GET /api/menu-items/{id}", s.menuH.GetItem)
	mux.HandleFunc("PUT /api/menu-items/{id}", s.menuH.UpdateItem)
	mux.HandleFunc("DELETE /api/menu-items/{id}", s.menuH.DeleteItem)
	mux.HandleFunc("POST /api/menu-items/{id}/hide", s.menuH.Hide)
	mux.HandleFunc("POST /api/menu-items/{id}/restore", s.menuH.Restore)
	mux.HandleFunc("GET /api/menu-items/{id}/sides", s.menuH.ListSidesForEntree)
	mux.HandleFunc("POST /api/menu-items/{id}/sides", s.menuH.LinkSide)
	mux.HandleFunc("DELETE /api/menu-items/{id}/sides", s.menuH.UnlinkSide)

	mux.HandleFunc("GET /api/statistics/popularity", s.menuH.PopularityStats)

	// Side API routes
	mux.HandleFunc("POST /api/sides", s.menuH.CreateSide)
	mux.HandleFunc("GET /api/sides", s.menuH.ListSides)
	mux.HandleFunc("DELETE /api/sides/{id}", s.menuH.DeleteSide)

	// Recipe API routes, keyed by the owning menu item
	mux.HandleFunc("POST /api/menu-items/{id}/recipe", s.recipeH.Create)
	mux.HandleFunc("GET /api/menu-items/{id}/recipe", s.recipeH.Get)
	mux.HandleFunc("PUT /api/menu-items/{id}/recipe", s.recipeH.Update)
	mux.HandleFunc("DELETE /api/menu-items/{id}/recipe", s.recipeH.Delete)

	// Meal plan API routes
	mux.HandleFunc("POST /api/plans", s.planH.Create)
	mux.HandleFunc("GET /api/plans", s.planH.List)
	mux.HandleFunc("POST /api/plans/{id}/move", s.planH.Move)
	mux.HandleFunc("PUT /api/plans/{id}/side", s.planH.UpdateSide)
	mux.HandleFunc("DELETE /api/plans/{id}", s.planH.Delete)
	mux.HandleFunc("POST /api/plans/{id}/vote", s.planH.Vote)
	mux.HandleFunc("GET /api/plans/{id}/votes", s.planH.ListVotes)

	// Shopping list API routes
	mux.HandleFunc("POST /api/shopping-lists/generate", s.shoppingH.Generate)
	mux.HandleFunc("GET /api/shopping-lists", s.shoppingH.ListLists)
	mux.HandleFunc("GET /api/shopping-lists/{id}", s.shoppingH.GetList)
	mux.HandleFunc("DELETE /api/shopping-lists/{id}", s.shoppingH.DeleteList)
	mux.HandleFunc("POST /api/shopping-lists/{id}/items", s.shoppingH.AddItem)
	mux.HandleFunc("POST /api/shopping-lists/{id}/reorder", s.shoppingH.Reorder)
	mux.HandleFunc("POST /api/shopping-lists/{id}/apply-template", s.shoppingH.ApplyTemplate)
	mux.HandleFunc("GET /api/shopping-lists/{id}/export", s.shoppingH.Export)
	mux.HandleFunc("POST /api/shopping-lists/{id}/share", s.shoppingH.Share)
	mux.HandleFunc("PUT /api/shopping-items/{id}", s.shoppingH.UpdateItem)
	mux.HandleFunc("POST /api/shopping-items/{id}/check", s.shoppingH.ToggleItem)
	mux.HandleFunc("DELETE /api/shopping-items/{id}", s.shoppingH.DeleteItem)

	// Shopping template API routes
	mux.HandleFunc("POST /api/shopping-templates", s.shoppingH.CreateTemplate)
	mux.HandleFunc("GET /api/shopping-templates", s.shoppingH.ListTemplates)
	mux.HandleFunc("DELETE /api/shopping-templates/{id}", s.shoppingH.DeleteTemplate)

	// Menu generation API routes
	mux.HandleFunc("POST /api/menu/generate", s.menuGenH.Generate)
	mux.HandleFunc("GET /api/menu/preferences", s.menuGenH.GetPreferences)
	mux.HandleFunc("PUT /api/menu/preferences", s.menuGenH.SavePreferences)

	// Push notification API routes
	if s.pushH != nil {
		mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("POST /api/push/unsubscribe", s.pushH.Unsubscribe)
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDKey)
	}

	// Backup API routes
	mux.HandleFunc("POST /api/backups", s.backupH.Run)
	mux.HandleFunc("GET /api/backups", s.backupH.List)
	mux.HandleFunc("POST /api/backups/{id}/restore", s.backupH.Restore)

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
