package main

import (
	"fmt"
	"os"

	"ghmerge/cmd"
	"ghmerge/internal/configutil"
	"ghmerge/internal/systemcode"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	err := configutil.Load()
	if err != nil {
		fmt.Println(err)
		os.Exit(systemcode.ErrorCodeGeneric)
	}

	err = cmd.Execute()
	if err != nil {
		fmt.Println(err)
		os.Exit(systemcode.ErrorCodeGeneric)
	}
}
