package mongo

import (
	"errors"

	"github.com/heyfey/priosched/config"
	"github.com/heyfey/priosched/pkg/common/logger"
	"gopkg.in/mgo.v2"
)

// ErrDisabled is returned by ConnectMongo when no Mongo endpoint is
// configured; callers should treat this as "audit logging disabled", not a
// fatal error.
var ErrDisabled = errors.New("mongo: no endpoint configured")

// ConnectMongo connects to the audit log's mongo endpoint, read from
// MONGODB_SVC_SERVICE_HOST/MONGODB_SVC_SERVICE_PORT. It returns ErrDisabled
// if no host is configured, so audit logging can be skipped without treating
// the deployment as broken.
func ConnectMongo() (*mgo.Session, error) {
	log := logger.GetLogger()
	defer logger.Flush()

	host := config.MongoHost()
	if host == "" {
		return nil, ErrDisabled
	}
	port := config.MongoPort()

	mongoURI := host + ":" + port
	session, err := mgo.Dial(mongoURI)
	if err != nil {
		log.Error(err, "Could not connect to mongodb", "mongoURI", mongoURI)
		return nil, err
	}
	return session, nil
}
