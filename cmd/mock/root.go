package mock

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robokit/simlink/cmd/util"
	"github.com/robokit/simlink/rpc/common"
	"github.com/robokit/simlink/rpc/simserver"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// MockCmd runs the built-in stub station. It speaks the same protocol as the
// real simulator and is intended for development and CI, where no simulator
// installation is available.
var MockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Run a stub station server",
	Long: `Run a stub station server.

The stub holds a small in-memory station (one robot, a frame and a target)
and answers the full command set, so clients and scripts can be exercised
without a simulator installation.`,
	RunE: runMock,
}

func init() {
	cobra.OnInitialize(util.InitClientConfig)

	key := "listen"
	MockCmd.Flags().String(key, fmt.Sprintf("127.0.0.1:%d", common.DefaultPort), util.WrapString("Address to listen on"))
	key = "log-level"
	MockCmd.Flags().String(key, "info", util.WrapString("Log level (debug, info, warning, error)"))
}

func runMock(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}
	common.InitLoggers(viper.GetString("log-level"))

	srv := simserver.NewStub()
	if err := srv.Listen(viper.GetString("listen")); err != nil {
		return err
	}
	defer srv.Close()

	fmt.Printf("Stub station Running on %s\n", srv.Addr())

	// block until interrupted
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	fmt.Println("shutting down")
	return nil
}
