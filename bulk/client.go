package bulk

import (
	"net"
	"strconv"
	"time"

	"github.com/sanguinariojoe/oclandgo/cmn/cos"
	"github.com/sanguinariojoe/oclandgo/wire"
)

const (
	dialRetryDelay = 5 * time.Millisecond
	dialMaxRetries = 200 // ~1s total, generous for the server's accept to trail bind+listen
)

// Dial connects to the server's ephemeral transfer port, retrying on
// connection-refused since the server's accept() may trail its bind+listen
// by a scheduling quantum (spec §5).
func Dial(addr string, port int) (*wire.Conn, error) {
	target := net.JoinHostPort(addr, strconv.Itoa(port))
	var lastErr error
	for i := 0; i < dialMaxRetries; i++ {
		nc, err := net.Dial("tcp", target)
		if err == nil {
			return wire.NewConn(nc), nil
		}
		lastErr = err
		if !cos.IsErrConnectionRefused(err) {
			return nil, err
		}
		time.Sleep(dialRetryDelay)
	}
	return nil, lastErr
}

// ClientRead performs the client side of a non-blocking read transfer:
// receive the dense dataPack, unpack into the (possibly pitched) host
// destination, then close.
func ClientRead(c *wire.Conn, host []byte, r Region) error {
	defer c.Close()
	dense, err := c.ReadDataPack(r.dense())
	if err != nil {
		return err
	}
	UnpackPitched(dense, host, r)
	return nil
}

// ClientWrite performs the client side of a non-blocking write transfer:
// pack the (possibly pitched) host source densely and send it.
func ClientWrite(c *wire.Conn, host []byte, r Region) error {
	defer c.Close()
	dense := PackDense(host, r)
	if err := c.WriteDataPack(dense); err != nil {
		return err
	}
	return c.Flush()
}
