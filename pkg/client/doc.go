// Package client sends files to a hashd server and returns their digests.
//
// Each call to [Client.Hash] opens one connection, negotiates the
// algorithm, streams every file and reads one hex digest per file. The
// connection is closed afterwards; the protocol has no way to reuse it.
//
//	c := client.New("127.0.0.1:2345", client.WithTimeout(10*time.Second))
//	results, err := c.HashPaths(ctx, "sha256", []string{"a.bin", "b.bin"})
//	if errors.Is(err, client.ErrUnsupportedAlgorithm) {
//	    // the server answered with its plain-text diagnostic
//	}
package client
