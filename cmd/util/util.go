package util

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robokit/simlink/rpc/client"
	"github.com/robokit/simlink/rpc/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Start a new line if this word would exceed the wrap width
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add a space between words
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupClientFlags adds the common connection flags to a command
func SetupClientFlags(cmd *cobra.Command) {
	key := "host"
	cmd.PersistentFlags().String(key, common.DefaultHost, WrapString("Address of the machine running the simulator"))

	key = "port"
	cmd.PersistentFlags().Int(key, common.DefaultPort, WrapString("TCP port the simulator API listens on"))

	key = "timeout"
	cmd.PersistentFlags().Int(key, int(common.DefaultTimeout.Milliseconds()), WrapString("Timeout for one command round trip (in milliseconds)"))

	key = "launch"
	cmd.PersistentFlags().Bool(key, false, WrapString("Start the simulator if no instance is reachable"))

	key = "app-path"
	cmd.PersistentFlags().String(key, "", WrapString("Path to the simulator executable (used with --launch)"))

	key = "app-args"
	cmd.PersistentFlags().String(key, "", WrapString("Extra arguments passed to the simulator on launch"))

	key = "log-level"
	cmd.PersistentFlags().String(key, "warning", WrapString("Log level (debug, info, warning, error)"))
}

// InitClientConfig initializes configuration from environment variables
func InitClientConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("simlink")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetClientConfig reads client configuration from viper
func GetClientConfig() common.ClientConfig {
	conf := common.NewClientConfig()
	conf.Host = viper.GetString("host")
	conf.Port = viper.GetInt("port")
	conf.Timeout = time.Duration(viper.GetInt("timeout")) * time.Millisecond
	conf.AutoLaunch = viper.GetBool("launch")
	conf.AppPath = viper.GetString("app-path")
	conf.AppArgs = viper.GetString("app-args")
	return conf
}

// NewClient creates a client from the resolved configuration and applies the
// configured log level.
func NewClient() *client.Client {
	common.InitLoggers(viper.GetString("log-level"))
	return client.New(GetClientConfig())
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}
