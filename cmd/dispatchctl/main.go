// Command dispatchctl is a terminal client for the dispatch board.
package main

import (
	"os"

	"fieldfuze-dispatch/client"
)

func main() {
	root := newRootCmd(os.Stdout, func(baseURL, token string) client.DispatchAPI {
		return client.NewAPIClient(baseURL, token)
	})
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
