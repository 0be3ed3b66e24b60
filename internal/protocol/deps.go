package protocol

import (
	"vocabbie/internal/corpus"
	"vocabbie/internal/session"
	"vocabbie/internal/tyv"
)

// Deps are the dependencies every handler closes over, following the
// teacher's handler-factory convention (a constructor taking shared
// services and returning a gin.HandlerFunc).
type Deps struct {
	Corpus   corpus.Store
	Sessions *session.Store
	TyvLists tyv.Lists
	// TyvModel is nil when recall-tyv is disabled or not compiled in
	// (§4.1: "If TYV is not compiled in, the endpoint must refuse
	// recall-tyv sessions at start").
	TyvModel *tyv.Model
}
