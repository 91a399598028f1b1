package either

// Bytes is an Either[[]byte] and is used to carry raw event stream frames,
// or the transport error which terminated them, on a single channel.
type Bytes = Either[[]byte]
