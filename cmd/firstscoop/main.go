package main

import (
	"firstscoop-backend/cmd/firstscoop/commands"
	"firstscoop-backend/lib/util/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
