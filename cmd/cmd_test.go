package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bnema/seatctl/internal/compositor"
	"github.com/bnema/seatctl/internal/config"
	"github.com/bnema/seatctl/internal/control"
	"github.com/bnema/seatctl/internal/remote"
	"github.com/bnema/seatctl/internal/seat"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME and the working directory at a temp dir so no user config is read
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	chdir(t, dir)
	return dir
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// executeCommand runs the CLI with fresh flag and config state and returns its output
func executeCommand(args ...string) (string, error) {
	resetFlags(rootCmd)
	viper.Reset()
	config.Set(nil)
	config.SetConfigPath("")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// startCompositor serves seat0 (pointer, keyboard), touchpanel (touch) and surfaces 7 and 9
func startCompositor(t *testing.T) (*compositor.State, string) {
	t.Helper()

	state := compositor.NewState()
	state.AddSeat(seat.Seat{Name: "seat0", Capabilities: seat.Pointer | seat.Keyboard})
	state.AddSeat(seat.Seat{Name: "touchpanel", Capabilities: seat.Touch})
	require.NoError(t, state.AddSurface(7))
	require.NoError(t, state.AddSurface(9))

	path := filepath.Join(t.TempDir(), "ctl.sock")
	srv := compositor.NewServer(state, path)
	require.NoError(t, srv.Start())
	t.Cleanup(srv.Stop)
	return state, path
}

func TestDevicesCommand(t *testing.T) {
	isolate(t)
	_, sock := startCompositor(t)

	out, err := executeCommand("devices", "--socket", sock)
	require.NoError(t, err)
	assert.Contains(t, out, "seat0")
	assert.Contains(t, out, "touchpanel")

	out, err = executeCommand("devices", "--socket", sock, "--names", "--caps", "touch")
	require.NoError(t, err)
	assert.Equal(t, "touchpanel\n", out)

	_, err = executeCommand("devices", "--socket", sock, "--caps", "joystick")
	assert.Error(t, err)
}

func TestCapsCommand(t *testing.T) {
	isolate(t)
	_, sock := startCompositor(t)

	out, err := executeCommand("caps", "seat0", "--socket", sock)
	require.NoError(t, err)
	assert.Equal(t, "seat0: pointer|keyboard\n", out)

	_, err = executeCommand("caps", "ghost", "--socket", sock)
	assert.ErrorIs(t, err, control.ErrUnknownSeat)
}

func TestAcceptCommands(t *testing.T) {
	isolate(t)
	state, sock := startCompositor(t)

	_, err := executeCommand("accept", "7", "seat0", "touchpanel", "--socket", sock)
	require.NoError(t, err)

	out, err := executeCommand("acceptance", "7", "--socket", sock)
	require.NoError(t, err)
	assert.Equal(t, "seat0\ntouchpanel\n", out)

	_, err = executeCommand("accept", "7", "seat0", "ghost", "--socket", sock)
	assert.ErrorIs(t, err, control.ErrUnknownSeat)

	snap, err := state.Sync(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"seat0", "touchpanel"}, snap.Surfaces[0].AcceptedSeats)

	_, err = executeCommand("accept", "7", "--socket", sock)
	require.NoError(t, err)
	out, err = executeCommand("acceptance", "7", "--socket", sock)
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = executeCommand("accept", "42", "seat0", "--socket", sock)
	assert.ErrorIs(t, err, control.ErrUnknownSurface)

	_, err = executeCommand("accept", "seven", "--socket", sock)
	assert.Error(t, err)
}

func TestSurfacesCommand(t *testing.T) {
	isolate(t)
	_, sock := startCompositor(t)

	out, err := executeCommand("surfaces", "--socket", sock)
	require.NoError(t, err)
	assert.Contains(t, out, "ACCEPTED SEATS")
	assert.Contains(t, out, "9")
}

func TestFocusCommands(t *testing.T) {
	isolate(t)
	state, sock := startCompositor(t)

	t.Run("exclusive classes cannot be set on several surfaces", func(t *testing.T) {
		_, err := executeCommand("focus", "set", "7,9", "--caps", "pointer", "--socket", sock)
		assert.ErrorIs(t, err, control.ErrExclusivityViolation)
	})

	t.Run("keyboard focus on several surfaces", func(t *testing.T) {
		_, err := executeCommand("focus", "set", "7", "9", "--caps", "keyboard", "--socket", sock)
		require.NoError(t, err)

		out, err := executeCommand("focus", "list", "--socket", sock)
		require.NoError(t, err)
		assert.Contains(t, out, "keyboard")
	})

	t.Run("swap", func(t *testing.T) {
		_, err := executeCommand("focus", "unset", "9", "--caps", "keyboard", "--socket", sock)
		require.NoError(t, err)

		_, err = executeCommand("focus", "swap", "--src", "7", "--dst", "9", "--caps", "keyboard", "--socket", sock)
		require.NoError(t, err)

		snap, err := state.Sync(context.Background())
		require.NoError(t, err)
		assert.Equal(t, seat.Capability(0), snap.Surfaces[0].Focus)
		assert.Equal(t, seat.Keyboard, snap.Surfaces[1].Focus)
	})

	t.Run("swap with only unknown surfaces", func(t *testing.T) {
		_, err := executeCommand("focus", "swap", "--src", "100", "--dst", "101", "--caps", "keyboard", "--socket", sock)
		assert.ErrorIs(t, err, control.ErrNoOp)
	})

	t.Run("unknown surface", func(t *testing.T) {
		_, err := executeCommand("focus", "set", "7", "42", "--caps", "keyboard", "--socket", sock)
		assert.ErrorIs(t, err, control.ErrUnknownSurface)
	})
}

func TestServeCommand(t *testing.T) {
	tmpDir := isolate(t)
	sock := filepath.Join(tmpDir, "serve.sock")
	path := filepath.Join(tmpDir, "seatctl.toml")
	content := `
[[compositor.seats]]
name = "seat0"
capabilities = ["pointer", "keyboard"]

[[compositor.surfaces]]
id = 3
accepted_seats = ["seat0"]
focus = ["pointer"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	resetFlags(rootCmd)
	viper.Reset()
	config.Set(nil)
	config.SetConfigPath("")
	rootCmd.SetArgs([]string{"serve", "--config", path, "--socket", sock})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- rootCmd.ExecuteContext(ctx)
	}()

	client := remote.NewClient(sock, time.Second)
	defer client.Close()
	require.Eventually(t, func() bool {
		return client.Dial(context.Background()) == nil
	}, 5*time.Second, 20*time.Millisecond)

	snap, err := client.Sync(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Surfaces, 1)
	assert.Equal(t, []string{"seat0"}, snap.Surfaces[0].AcceptedSeats)
	assert.Equal(t, seat.Pointer, snap.Surfaces[0].Focus)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
	_, err = os.Stat(sock)
	assert.True(t, os.IsNotExist(err), "socket should be removed on shutdown")
}

func TestCommandWithoutCompositor(t *testing.T) {
	dir := isolate(t)

	_, err := executeCommand("devices", "--socket", filepath.Join(dir, "missing.sock"))
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	isolate(t)

	out, err := executeCommand("version")
	require.NoError(t, err)
	assert.Contains(t, out, "seatctl "+Version)
}

func TestParseSurfaceIDs(t *testing.T) {
	ids, err := parseSurfaceIDs([]string{"7,9", " 11 ", ""})
	require.NoError(t, err)
	assert.Len(t, ids, 3)
	assert.EqualValues(t, 11, ids[2])

	_, err = parseSurfaceIDs([]string{"-1"})
	assert.Error(t, err)

	_, err = parseSurfaceIDs([]string{"4294967296"})
	assert.Error(t, err)
}

// chdir changes the working directory for the duration of the test (t.Chdir needs Go 1.24)
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}
