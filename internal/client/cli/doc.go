// Package cli provides the interactive account command-line client.
//
// It wires configuration, the backend connection, the profile cache and the
// account workflows into a page-based REPL. Each page accepts its own
// commands; the workflows move the user between pages:
//
//	login:  register, login, confirm
//	index:  whoami, manage, logout
//	manage: username, email, password, confirm, close, logout
//
// help and exit|quit work everywhere. The account-editing forms open in a
// terminal popup that prompts for each field; an empty answer to the first
// prompt closes it.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
