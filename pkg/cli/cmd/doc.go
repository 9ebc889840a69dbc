// Package cmd implements the cobra command tree for the docreminder CLI:
// registering documents, running the expiry check, listing the store,
// managing the sender credential and shell completion.
package cmd
