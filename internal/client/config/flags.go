package config

import (
	"flag"
	"os"

	"github.com/dkotelnikov/spotlist/internal/flagx"
)

// parseFlags populates selected client Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the spotlist API (e.g. "http://127.0.0.1:8080")
//	-u string   S3 user
//	-p string   S3 password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g. "http://127.0.0.1:9000/")
//	-o string   public base URL for stored objects
//
// Args are filtered to only the flags handled here, avoiding collisions with
// flags owned by the command itself.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-u", "-p", "-b", "-g", "-e", "-o"})

	fs := flag.NewFlagSet("client", flag.ContinueOnError)

	fs.StringVar(&config.ServerBaseURL, "a", config.ServerBaseURL, "spotlist API base URL")
	fs.StringVar(&config.S3.User, "u", config.S3.User, "S3 user")
	fs.StringVar(&config.S3.Password, "p", config.S3.Password, "S3 password")
	fs.StringVar(&config.S3.Bucket, "b", config.S3.Bucket, "S3 bucket")
	fs.StringVar(&config.S3.Region, "g", config.S3.Region, "S3 region")
	fs.StringVar(&config.S3.BaseEndpoint, "e", config.S3.BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3.PublicBaseURL, "o", config.S3.PublicBaseURL, "public base URL for objects")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
