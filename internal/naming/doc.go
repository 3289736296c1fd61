// Package naming translates property names between the client object graph
// and the server's mapped names.
//
// Key functions:
//   - Tokenize: splits CamelCase, camelCase and separated identifiers
//   - Convention: bidirectional client<->server name translation
//   - CamelCase / None: the two stock conventions
package naming
