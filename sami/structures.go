package sami

// Wire entities travel as untyped nested mappings (decoded JSON).
// A Structure describes the exact field set such a mapping must carry.
// Each field is either a primitive kind or a nested Structure.

type FieldKind uint

const (
	// Integer accepts native integers and digit-only strings, see isIntegerLike.
	Integer FieldKind = iota
	String
	// Dict accepts any mapping without recursing into it.
	Dict
)

type FieldSpec struct {
	Kind   FieldKind
	Nested Structure
}

type Structure map[string]FieldSpec

func intField() FieldSpec    { return FieldSpec{Kind: Integer} }
func strField() FieldSpec    { return FieldSpec{Kind: String} }
func dictField() FieldSpec   { return FieldSpec{Kind: Dict} }
func nested(s Structure) FieldSpec { return FieldSpec{Nested: s} }

var NodeStructure = Structure{
	"rsa_n": intField(),
	"rsa_e": intField(),
	"hash":  strField(),
	"sig":   strField(),
}

var SimpleContactStructure = Structure{
	"address": strField(),
}

var StoredContactStructure = Structure{
	"address":   strField(),
	"last_seen": intField(),
}

var AESKeyStructure = Structure{
	"value": strField(),
	"hash":  strField(),
	"sig":   strField(),
}

var ReceivedMessageStructure = Structure{
	"content": strField(),
	"meta": nested(Structure{
		"time_sent": intField(),
		"digest":    strField(),
	}),
	"author": nested(NodeStructure),
}

var StoredMessageStructure = Structure{
	"content": strField(),
	"meta": nested(Structure{
		"time_sent":     intField(),
		"time_received": intField(),
		"digest":        strField(),
	}),
}

// Requests section

var RequestStandardStructure = Structure{
	"status":    strField(),
	"data":      dictField(),
	"timestamp": intField(),
}

var KEPRequestStructure = Structure{
	"status": strField(),
	"data": nested(Structure{
		"key":       nested(AESKeyStructure),
		"author":    nested(NodeStructure),
		"recipient": nested(NodeStructure),
	}),
	"timestamp": intField(),
}

var WUPIniRequestStructure = Structure{
	"status": strField(),
	"data": nested(Structure{
		"timestamp": intField(),
		"author":    nested(SimpleContactStructure),
	}),
	"timestamp": intField(),
}

var WUPRepRequestStructure = Structure{
	"status":    strField(),
	"data":      nested(RequestStandardStructure),
	"timestamp": intField(),
}

var BCPRequestStructure = Structure{
	"status":    strField(),
	"data":      nested(SimpleContactStructure),
	"timestamp": intField(),
}

var NPPRequestStructure = Structure{
	"status":    strField(),
	"data":      nested(NodeStructure),
	"timestamp": intField(),
}

var MPPRequestStructure = Structure{
	"status":    strField(),
	"data":      nested(ReceivedMessageStructure),
	"timestamp": intField(),
}

var DPRequestStructure = Structure{
	"status": strField(),
	"data": nested(Structure{
		"author": nested(SimpleContactStructure),
	}),
	"timestamp": intField(),
}

// StructureMapping resolves a structure by its wire name.
// Returns nil for unknown names.
func StructureMapping(structName string) Structure {
	switch structName {
	case "node_structure":
		return NodeStructure
	case "simple_contact_structure":
		return SimpleContactStructure
	case "stored_contact_structure":
		return StoredContactStructure
	case "aes_key_structure":
		return AESKeyStructure
	case "received_message_structure":
		return ReceivedMessageStructure
	case "stored_message_structure":
		return StoredMessageStructure
	case "request_standard_structure":
		return RequestStandardStructure
	case "kep_request_structure":
		return KEPRequestStructure
	case "wup_ini_request_structure":
		return WUPIniRequestStructure
	case "wup_rep_request_structure":
		return WUPRepRequestStructure
	case "bcp_request_structure":
		return BCPRequestStructure
	case "npp_request_structure":
		return NPPRequestStructure
	case "mpp_request_structure":
		return MPPRequestStructure
	case "dp_request_structure":
		return DPRequestStructure
	default:
		return nil
	}
}
