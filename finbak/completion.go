package main

import (
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// completion describes the command line for shell completion.
func completion() *complete.Command {
	archives := predict.Files("*.zip")
	modes := predict.Set{"RAW", "COMPRESS", "ENCRYPT", "COMPRESS_AND_ENCRYPT"}
	periods := predict.Set{"day", "week", "month", "quarter", "year"}
	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"keystore": predict.Dirs("*"),
			"books":    predict.Dirs("*"),
			"v":        predict.Nothing,
		},
		Sub: map[string]*complete.Command{
			"help":     {},
			"flags":    {},
			"commands": {},
			"init":     {Flags: map[string]complete.Predictor{"force": predict.Nothing}},
			"passwd":   {},
			"secret":   {Flags: map[string]complete.Predictor{"open": predict.Nothing}},
			"backup": {
				Flags: map[string]complete.Predictor{"mode": modes, "force": predict.Nothing},
				Args:  archives,
			},
			"restore": {Flags: map[string]complete.Predictor{"n": predict.Nothing}, Args: archives},
			"list":    {Args: archives},
			"verify":  {Args: archives},
			"show": {
				Flags: map[string]complete.Predictor{"d": predict.Something, "p": periods},
				Args:  archives,
			},
			"diff": {Args: archives},
		},
	}
}
