package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/bookmarkhive/hive/activitypub"
	"github.com/bookmarkhive/hive/db"
	"github.com/bookmarkhive/hive/metrics"
	"github.com/bookmarkhive/hive/util"
	"github.com/bookmarkhive/hive/web"
	"github.com/charmbracelet/log"
)

func main() {

	createUser := flag.String("create-user", "", "provision a local user and exit")
	flag.Parse()

	conf, err := util.ReadConf()
	if err != nil {
		log.Fatal("Could not read configuration", "err", err)
	}

	fmt.Println("Configuration: ")
	fmt.Println(util.PrettyPrint(conf))

	database := db.GetDB()

	if *createUser != "" {
		username := util.NormalizeInput(*createUser)
		err, user := database.CreateUser(username, conf)
		if err != nil {
			log.Fatal("Could not create user", "username", username, "err", err)
		}
		log.Info("Created user", "username", user.Username, "id", user.Id)
		os.Exit(0)
	}

	collector := metrics.NewCollector()

	client := activitypub.NewSafeClient(time.Duration(conf.Conf.DeliveryTimeoutSecs) * time.Second)
	resolver := activitypub.NewResolver(database, client, collector)
	builder := activitypub.NewBuilder(conf)
	urls := activitypub.NewURLBuilder(conf)
	dispatcher := activitypub.NewQueueDispatcher(database)
	handlers := activitypub.NewHandlers(database, database, resolver, dispatcher, builder, client, collector)

	if conf.Conf.WithFederation {
		worker := activitypub.NewWorker(database, handlers,
			time.Duration(conf.Conf.WorkerIntervalSecs)*time.Second, collector)
		worker.Start()
	}

	server := web.NewServer(conf, database, builder, urls, resolver, dispatcher, collector)
	if err := server.Run(); err != nil {
		log.Fatal("Server stopped", "err", err)
	}
}
