/*
Package tui is the interactive fxdash dashboard.

The model follows the usual Bubble Tea shape: one *Model mutated by Update,
with every backend call issued from a tea.Cmd so the event loop never
blocks. Screens mirror the web dashboard: a login form, then a shell with a
header, a sidebar (Home, Providers, Subscribers) and a key-help footer.

Protected screens are only reachable with a live session. When the
authenticated client gives up on a refresh, its expiry hook sends
sessionExpiredMsg and the model falls back to the login screen, returning
to the previous section after the next successful sign-in.
*/
package tui
