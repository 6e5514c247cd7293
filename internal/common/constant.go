// Package common contains constants and tiny helpers shared by the client
// packages.
package common

// AccessTokenKey is the fixed local-storage key holding the bearer token.
const AccessTokenKey = "access_token"

// MinPasswordLength is the shortest password accepted before submission.
const MinPasswordLength = 8

// AcceptedExtensions lists the document types the backend can analyse.
var AcceptedExtensions = []string{".pdf", ".docx", ".doc", ".txt"}
