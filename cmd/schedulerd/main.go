package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/heyfey/priosched/config"
	"github.com/heyfey/priosched/pkg/common/logger"
	"github.com/heyfey/priosched/pkg/driver"
	"github.com/heyfey/priosched/pkg/service"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
)

func main() {
	fmt.Printf("%s (v%s)\n", config.Msg, config.Version)

	// flag definition must precede logger.InitLogger().
	defaultKubeconfig := ""
	if home := homedir.HomeDir(); home != "" {
		defaultKubeconfig = filepath.Join(home, ".kube", "config")
	}
	kubeconfigPtr := flag.String("kubeconfig", defaultKubeconfig,
		"absolute path to the kubeconfig file (unused when running in-cluster)")

	logger.InitLogger()
	log := logger.GetLogger()
	defer logger.Flush()

	log.Info(config.Msg, "version", config.Version)

	if !flag.Parsed() {
		flag.Parse()
	}

	kConfig, err := buildRestConfig(*kubeconfigPtr)
	if err != nil {
		log.Error(err, "Failed to build cluster config")
		logger.Flush()
		os.Exit(1)
	}

	d, err := driver.New(kConfig)
	if err != nil {
		log.Error(err, "Failed to construct driver")
		logger.Flush()
		os.Exit(1)
	}
	go d.Run()

	svc := service.New(d)
	log.Info("Serving debug service", "port", config.Port)
	if err := http.ListenAndServe(":"+config.Port, svc.Router); err != nil {
		log.Error(err, "Debug service shut down")
	}
}

// buildRestConfig prefers in-cluster config and falls back to kubeconfig,
// matching the teacher's single-flag client setup in pkg/main.go.
func buildRestConfig(kubeconfig string) (*rest.Config, error) {
	if kConfig, err := rest.InClusterConfig(); err == nil {
		return kConfig, nil
	}
	return clientcmd.BuildConfigFromFlags("", kubeconfig)
}
