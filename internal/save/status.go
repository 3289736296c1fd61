package save

//go:generate go tool stringer -type=Status -output=status_string.go

// Status is the progress of one save operation.
type Status int

const (
	Pending Status = iota
	Bundled
	Sent
	Succeeded
	TransportFailed
	ServerRejected
)

// Done reports whether the operation reached a final state.
func (s Status) Done() bool {
	return s == Succeeded || s == TransportFailed || s == ServerRejected
}
