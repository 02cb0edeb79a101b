package keybinds

// Action represents a user action that can be triggered by a keybinding
type Action string

// Context represents the context in which keybindings are active
type Context string

const (
	ContextGlobal  Context = "global"  // Available everywhere
	ContextLogin   Context = "login"   // Sign-in form
	ContextTable   Context = "table"   // Provider and subscriber tables
	ContextSearch  Context = "search"  // Table search input
	ContextForm    Context = "form"    // Provider create/edit form
	ContextConfirm Context = "confirm" // Confirmation prompts
	ContextDetail  Context = "detail"  // Opened row
)

// AllContexts lists every context in display order
var AllContexts = []Context{
	ContextGlobal,
	ContextLogin,
	ContextTable,
	ContextSearch,
	ContextForm,
	ContextConfirm,
	ContextDetail,
}

const (
	// Global actions
	ActionQuit      Action = "quit"       // Quit application
	ActionQuitForce Action = "quit_force" // Force quit (ctrl+c)
	ActionHelp      Action = "help"       // Toggle full key help
	ActionLogout    Action = "logout"     // End the session

	// Sections
	ActionNextSection    Action = "next_section"
	ActionPrevSection    Action = "prev_section"
	ActionGoHome         Action = "go_home"
	ActionGoProviders    Action = "go_providers"
	ActionGoSubscribers  Action = "go_subscribers"
	ActionReload         Action = "reload"
	ActionCreateProvider Action = "create_provider"

	// Table navigation
	ActionRowUp         Action = "row_up"
	ActionRowDown       Action = "row_down"
	ActionNextPage      Action = "next_page"
	ActionPrevPage      Action = "prev_page"
	ActionFirstPage     Action = "first_page"
	ActionFirstPagePrep Action = "first_page_prepare" // First 'g' in 'gg'
	ActionLastPage      Action = "last_page"
	ActionOpenSearch    Action = "open_search"
	ActionClearSearch   Action = "clear_search"
	ActionRowOpen       Action = "row_open"
	ActionSortColumn    Action = "sort_column" // 1..9, column index from the key

	// Row actions
	ActionRowEdit   Action = "row_edit"
	ActionRowDelete Action = "row_delete"
	ActionRowCopy   Action = "row_copy"

	// Text input and forms
	ActionSubmit    Action = "submit"
	ActionCancel    Action = "cancel"
	ActionNextField Action = "next_field"
	ActionPrevField Action = "prev_field"
	ActionToggle    Action = "toggle" // Cycle a choice field

	// Confirmation
	ActionConfirm Action = "confirm"
	ActionDeny    Action = "deny"

	// Detail view
	ActionClose Action = "close"
)

// actionDescriptions are the short help labels
var actionDescriptions = map[Action]string{
	ActionQuit:           "quit",
	ActionQuitForce:      "force quit",
	ActionHelp:           "help",
	ActionLogout:         "logout",
	ActionNextSection:    "next section",
	ActionPrevSection:    "prev section",
	ActionGoHome:         "home",
	ActionGoProviders:    "providers",
	ActionGoSubscribers:  "subscribers",
	ActionReload:         "reload",
	ActionCreateProvider: "new provider",
	ActionRowUp:          "up",
	ActionRowDown:        "down",
	ActionNextPage:       "next page",
	ActionPrevPage:       "prev page",
	ActionFirstPage:      "first page",
	ActionFirstPagePrep:  "first page",
	ActionLastPage:       "last page",
	ActionOpenSearch:     "search",
	ActionClearSearch:    "clear search",
	ActionRowOpen:        "open",
	ActionSortColumn:     "sort column",
	ActionRowEdit:        "edit",
	ActionRowDelete:      "delete",
	ActionRowCopy:        "copy key",
	ActionSubmit:         "submit",
	ActionCancel:         "cancel",
	ActionNextField:      "next field",
	ActionPrevField:      "prev field",
	ActionToggle:         "toggle",
	ActionConfirm:        "yes",
	ActionDeny:           "no",
	ActionClose:          "close",
}

// Describe returns the help label of an action
func Describe(a Action) string {
	if d, ok := actionDescriptions[a]; ok {
		return d
	}
	return string(a)
}

// IsKnown reports whether a is a defined action
func IsKnown(a Action) bool {
	_, ok := actionDescriptions[a]
	return ok
}
