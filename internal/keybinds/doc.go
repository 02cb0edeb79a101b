/*
Package keybinds maps terminal key presses to dashboard actions.

# Contexts

Bindings live in a context. Match looks in the requested context first and
falls back to ContextGlobal, so a context binding shadows a global one:

  - Global: quit, help, section switching
  - Login: sign-in form
  - Table: provider and subscriber lists
  - Search: the table search line
  - Form: the provider editor
  - Confirm: yes/no prompts
  - Detail: the opened-row view

# Customizing

Users override defaults in ~/.fxdash/keybinds.yaml, one map of
action -> comma separated keys per context:

	table:
	  next_page: "right,l,n"
	  row_delete: "x"

Rebinding an action replaces all of its default keys in that context.
Validate reports conflicts before the TUI starts.

# Multi-key sequences

MatchMultiKey supports "gg" (first page). A lone "g" is held as a pending
prefix until the next key arrives.
*/
package keybinds
