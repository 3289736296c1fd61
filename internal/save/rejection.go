package save

import (
	"github.com/tidwall/gjson"
)

// ParseRejection reads a server validation payload:
//
//	{"Message": "...", "EntityErrors": [{"ErrorName", "EntityTypeName",
//	  "KeyValues", "PropertyName", "ErrorMessage"}]}
//
// "Errors" is accepted in place of "EntityErrors". ok is false when body
// carries no entity errors.
func ParseRejection(body []byte) (*ServerValidationRejection, bool) {
	if !gjson.ValidBytes(body) {
		return nil, false
	}

	root := gjson.ParseBytes(body)

	list := field(root, "EntityErrors", "entityErrors", "Errors", "errors")
	if !list.IsArray() || len(list.Array()) == 0 {
		return nil, false
	}

	rej := &ServerValidationRejection{
		Message: field(root, "Message", "message").String(),
	}

	for _, item := range list.Array() {
		ee := EntityError{
			ErrorName:      field(item, "ErrorName", "errorName").String(),
			EntityTypeName: field(item, "EntityTypeName", "entityTypeName").String(),
			PropertyName:   field(item, "PropertyName", "propertyName").String(),
			ErrorMessage:   field(item, "ErrorMessage", "errorMessage").String(),
		}

		for _, kv := range field(item, "KeyValues", "keyValues").Array() {
			ee.KeyValues = append(ee.KeyValues, kv.Value())
		}

		rej.EntityErrors = append(rej.EntityErrors, ee)
	}

	return rej, true
}
