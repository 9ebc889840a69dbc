// Package mail renders renewal reminder emails and delivers them through an
// authenticated SMTP relay.
package mail
