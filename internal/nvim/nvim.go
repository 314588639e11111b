package nvim

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"

	"github.com/neovim/go-client/nvim"
)

// doneMethod is the RPC notification Neovim sends once the scratch buffer is gone.
const doneMethod = "hotedit_done"

// ErrNoAddress reports that no Neovim server address is known.
var ErrNoAddress = errors.New("no Neovim server address; not running inside Neovim?")

// Addr returns the server address of the Neovim instance that owns the
// current terminal, if any.
func Addr() string {
	if addr := os.Getenv("NVIM"); addr != "" {
		return addr
	}
	return os.Getenv("NVIM_LISTEN_ADDRESS")
}

// Remote opens scratch files in a running Neovim instead of spawning a
// nested editor, and waits until the user deletes the buffer (":w|bd").
type Remote struct {
	Addr string
}

// Launch edits path in the remote instance. The editor command is ignored;
// the exit code is always 0.
func (r Remote) Launch(_ []string, path string) (int, error) {
	if r.Addr == "" {
		return -1, ErrNoAddress
	}

	conn, err := dial(r.Addr)
	if err != nil {
		return -1, fmt.Errorf("failed to connect to Neovim at '%s': %w", r.Addr, err)
	}
	v, err := nvim.New(conn, conn, conn, func(string, ...interface{}) {})
	if err != nil {
		conn.Close()
		return -1, fmt.Errorf("failed to create Neovim client: %w", err)
	}
	defer v.Close()

	done := make(chan struct{})
	var once sync.Once
	handler := func(_ string) {
		once.Do(func() { close(done) })
	}
	if err := v.RegisterHandler(doneMethod, handler); err != nil {
		return -1, fmt.Errorf("failed to register Neovim handler: %w", err)
	}

	served := make(chan error, 1)
	go func() { served <- v.Serve() }()

	if err := open(v, path); err != nil {
		return -1, err
	}

	select {
	case <-done:
	case <-served:
		// Neovim went away (":wq" on its last window); the file is final.
	}
	return 0, nil
}

func open(v *nvim.Nvim, path string) error {
	var escaped string
	if err := v.Call("fnameescape", &escaped, path); err != nil {
		return fmt.Errorf("failed to escape '%s' for Neovim: %w", path, err)
	}

	b := v.NewBatch()
	b.Command("edit " + escaped)
	b.Command(fmt.Sprintf(
		"autocmd BufDelete,BufWipeout <buffer> ++once call rpcnotify(%d, '%s', expand('<afile>:p'))",
		v.ChannelID(), doneMethod,
	))
	if err := b.Execute(); err != nil {
		return fmt.Errorf("failed to open '%s' in Neovim: %w", path, err)
	}
	return nil
}

// dial accepts "host:port" TCP addresses and unix socket paths.
func dial(addr string) (net.Conn, error) {
	if strings.Contains(addr, ":") && !strings.Contains(addr, "/") {
		return net.Dial("tcp", addr)
	}
	return net.Dial("unix", addr)
}
