// Package clientcli provides a client library for the s3manager server and
// the building blocks of its command line tool.
//
// Requests carry a bearer token; the server derives the user from it.
// Object bodies never pass through the server: Transfer asks a Backend for a
// presigned URL and moves the bytes directly to or from the bucket.
//
// # Basic Usage
//
//	client, err := clientcli.New(&clientcli.Config{
//		Server: "http://localhost:5780",
//		Token:  token,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	items, err := client.List(ctx, "docs/")
//
// # Fallback
//
// When the server answers 503 with code "store_unavailable", a Session
// keeps working from a local single-slot file (~/.s3manager/fallback.json):
// configuration writes land in the file and bucket operations run in-process
// through a LocalBackend. A missing configuration (404) never triggers this.
// The file is pushed back to the server only on request:
//
//	session := clientcli.NewSession(client, clientcli.NewLocalCache(""), opener)
//	source, err := session.SaveConfig(ctx, input) // "server" or "fallback"
//	...
//	err = session.Push(ctx)
//
// # Profile Configuration
//
// Use profiles to manage multiple servers:
//
//	configFile, err := clientcli.LoadConfigFile(clientcli.DefaultConfigPath())
//	profile, err := configFile.GetProfile("production")
//	client, err := clientcli.New(clientcli.ConfigFromProfile(profile))
//
// # Output Formatting
//
// Use formatters for human-readable or JSON output:
//
//	formatter := clientcli.NewFormatter(jsonOutput, quiet)
//	formatter.FormatList(os.Stdout, items)
package clientcli
