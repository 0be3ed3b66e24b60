package tyv

import "errors"

// ErrDisabled is returned by NewModel when tyv.enabled is false in
// configuration (§4.3: recall-tyv is opt-in per deployment).
var ErrDisabled = errors.New("tyv: model not enabled in configuration")

// ErrNotCompiled is returned by the notyv build of NewModel (§9's
// "TYV is optional; other modalities must not depend on it" note).
var ErrNotCompiled = errors.New("tyv: recall-tyv modality not compiled into this build")
