package application_test

import (
	"os"
	"testing"

	"github.com/skyblockz/sbz-giveaway/config"
)

func TestMain(m *testing.M) {
	config.SetTestConfig(config.NewTestConfig())
	_ = config.Get()

	os.Exit(m.Run())
}
