package main

import (
	"fmt"
	"log"
	"os"

	expert "github.com/kalluancartoon/ikin-expert"
	"github.com/kalluancartoon/ikin-expert/src/example"
	"github.com/kalluancartoon/ikin-expert/src/system/archivist"
	"github.com/kalluancartoon/ikin-expert/src/system/observer"
)

func main() {
	logger := log.New(os.Stdout, "", 0)

	// create the engine. Ident is required, LogLevel/Logger/History mirror
	// the teacher's own Settings shape.
	e := expert.New(expert.Settings{
		Ident:    "expertdemo",
		LogLevel: archivist.LEVEL_INFO,
		Logger:   logger,
		History:  true,
	})

	example.RegisterFactTypes(e)
	if err := example.RegisterVitalsRules(e); err != nil {
		log.Fatalf("register vitals rules: %v", err)
	}
	if err := example.RegisterVipTxnRule(e); err != nil {
		log.Fatalf("register vip txn rule: %v", err)
	}
	if err := example.RegisterCartesianRule(e); err != nil {
		log.Fatalf("register cartesian rule: %v", err)
	}

	// S1/S2: salience-ordered single-pattern matches.
	if _, err := e.Declare("Patient", map[string]interface{}{"name": "A", "heartbeat": int64(145)}); err != nil {
		log.Fatalf("declare patient A: %v", err)
	}
	if _, err := e.Declare("Patient", map[string]interface{}{"name": "B", "heartbeat": int64(80)}); err != nil {
		log.Fatalf("declare patient B: %v", err)
	}

	// S3/S4: a join on the shared client id, Txn declared after Client.
	if _, err := e.Declare("Client", map[string]interface{}{"id": int64(1), "status": "VIP"}); err != nil {
		log.Fatalf("declare client 1: %v", err)
	}
	if _, err := e.Declare("Client", map[string]interface{}{"id": int64(2), "status": "Common"}); err != nil {
		log.Fatalf("declare client 2: %v", err)
	}
	if _, err := e.Declare("Txn", map[string]interface{}{"client_id": int64(1), "amount": int64(6000)}); err != nil {
		log.Fatalf("declare txn: %v", err)
	}

	// S6: Cartesian product across three As and four Bs.
	for i := 0; i < 3; i++ {
		if _, err := e.Declare("A", nil); err != nil {
			log.Fatalf("declare A: %v", err)
		}
	}
	for i := 0; i < 4; i++ {
		if _, err := e.Declare("B", nil); err != nil {
			log.Fatalf("declare B: %v", err)
		}
	}

	// get an observer instance, provide a callback to run at the end, and
	// lethal=true so the engine halts once the agenda has drained.
	obsi := e.GetObserverInstance(func(eng observer.Engine) {
		logger.Println("agenda drained, pending activations:", eng.AgendaLen())
	}, true)

	obsi.SetTickRate(5)
	obsi.Loop()

	fmt.Println("done")
}
