package service

import "errors"

// Service errors.
var (
	// ErrClientClosed indicates the client has been closed.
	ErrClientClosed = errors.New("neuron: client is closed")

	// ErrProjectNotFound indicates the requested project does not exist.
	ErrProjectNotFound = errors.New("project not found")

	// ErrProjectArchived indicates an operation on an archived project.
	ErrProjectArchived = errors.New("project is archived")

	// ErrEmptyQuestion indicates a question with no text.
	ErrEmptyQuestion = errors.New("question is empty")

	// ErrProjectNotIndexed indicates the project has no indexed units yet.
	ErrProjectNotIndexed = errors.New("project is not indexed")
)
