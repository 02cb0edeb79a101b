package keybinds

import "strconv"

// NewDefaultRegistry creates a registry with all default keybindings
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	registerGlobalBindings(r)
	registerLoginBindings(r)
	registerTableBindings(r)
	registerSearchBindings(r)
	registerFormBindings(r)
	registerConfirmBindings(r)
	registerDetailBindings(r)

	return r
}

func registerGlobalBindings(r *Registry) {
	r.Register(ContextGlobal, "ctrl+c", ActionQuitForce)
	r.Register(ContextGlobal, "q", ActionQuit)
	r.Register(ContextGlobal, "?", ActionHelp)
	r.Register(ContextGlobal, "L", ActionLogout)
	r.Register(ContextGlobal, "tab", ActionNextSection)
	r.Register(ContextGlobal, "shift+tab", ActionPrevSection)
	r.Register(ContextGlobal, "H", ActionGoHome)
	r.Register(ContextGlobal, "P", ActionGoProviders)
	r.Register(ContextGlobal, "S", ActionGoSubscribers)
	r.Register(ContextGlobal, "r", ActionReload)
}

// Login binds no printable keys: every character belongs to the inputs
func registerLoginBindings(r *Registry) {
	r.Register(ContextLogin, "enter", ActionSubmit)
	r.RegisterMultiple(ContextLogin, []string{"tab", "down"}, ActionNextField)
	r.RegisterMultiple(ContextLogin, []string{"shift+tab", "up"}, ActionPrevField)
	r.Register(ContextLogin, "esc", ActionQuit)
}

func registerTableBindings(r *Registry) {
	r.RegisterMultiple(ContextTable, []string{"up", "k"}, ActionRowUp)
	r.RegisterMultiple(ContextTable, []string{"down", "j"}, ActionRowDown)
	r.RegisterMultiple(ContextTable, []string{"right", "l", "pgdown"}, ActionNextPage)
	r.RegisterMultiple(ContextTable, []string{"left", "h", "pgup"}, ActionPrevPage)
	r.Register(ContextTable, "g", ActionFirstPagePrep)
	r.RegisterMultiple(ContextTable, []string{"gg", "home"}, ActionFirstPage)
	r.RegisterMultiple(ContextTable, []string{"G", "end"}, ActionLastPage)
	r.Register(ContextTable, "/", ActionOpenSearch)
	r.Register(ContextTable, "esc", ActionClearSearch)
	r.Register(ContextTable, "enter", ActionRowOpen)
	r.Register(ContextTable, "n", ActionCreateProvider)
	r.Register(ContextTable, "e", ActionRowEdit)
	r.Register(ContextTable, "d", ActionRowDelete)
	r.Register(ContextTable, "c", ActionRowCopy)
	for i := 1; i <= 9; i++ {
		r.Register(ContextTable, strconv.Itoa(i), ActionSortColumn)
	}
}

func registerSearchBindings(r *Registry) {
	r.Register(ContextSearch, "enter", ActionSubmit)
	r.Register(ContextSearch, "esc", ActionCancel)
}

func registerFormBindings(r *Registry) {
	r.RegisterMultiple(ContextForm, []string{"tab", "down"}, ActionNextField)
	r.RegisterMultiple(ContextForm, []string{"shift+tab", "up"}, ActionPrevField)
	r.Register(ContextForm, "ctrl+s", ActionSubmit)
	r.Register(ContextForm, "enter", ActionSubmit)
	r.Register(ContextForm, "esc", ActionCancel)
	r.Register(ContextForm, " ", ActionToggle)
}

func registerConfirmBindings(r *Registry) {
	r.RegisterMultiple(ContextConfirm, []string{"y", "Y"}, ActionConfirm)
	r.RegisterMultiple(ContextConfirm, []string{"n", "N", "esc"}, ActionDeny)
}

func registerDetailBindings(r *Registry) {
	r.RegisterMultiple(ContextDetail, []string{"esc", "enter"}, ActionClose)
	r.Register(ContextDetail, "e", ActionRowEdit)
	r.Register(ContextDetail, "c", ActionRowCopy)
}
