package main

import (
	"github.com/shipledger/ledger/internal/app"
	"github.com/shipledger/ledger/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
