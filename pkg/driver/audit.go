package driver

import (
	"time"

	"github.com/heyfey/priosched/pkg/common/logger"
	"github.com/heyfey/priosched/pkg/common/mongo"
	"github.com/heyfey/priosched/pkg/model"
	mgo "gopkg.in/mgo.v2"
)

const auditDatabase = "priosched_audit"

// appliedAction is the audit log's record shape: one document per applied
// bind/evict. This is a write-only history for operators, never read back by
// the driver itself — on restart the driver rebuilds all state from the
// live informer caches.
type appliedAction struct {
	Scheduler string    `bson:"scheduler"`
	Kind      string    `bson:"kind"`
	Pod       string    `bson:"pod"`
	Node      string    `bson:"node,omitempty"`
	Timestamp time.Time `bson:"timestamp"`
}

// auditSink appends applied actions to Mongo. A nil session means audit
// logging is disabled; record becomes a no-op.
type auditSink struct {
	session *mgo.Session
}

func newAuditSink() auditSink {
	log := logger.GetLogger()
	defer logger.Flush()

	session, err := mongo.ConnectMongo()
	if err != nil {
		if err == mongo.ErrDisabled {
			log.V(2).Info("Audit log disabled: no mongo endpoint configured")
		} else {
			log.Error(err, "Audit log disabled: could not connect to mongo")
		}
		return auditSink{}
	}
	return auditSink{session: session}
}

func (a auditSink) record(scheduler string, action model.Action, at time.Time) {
	if a.session == nil {
		return
	}
	log := logger.GetLogger()
	defer logger.Flush()

	sess := a.session.Clone()
	defer sess.Close()

	entry := appliedAction{
		Scheduler: scheduler,
		Kind:      string(action.Kind),
		Pod:       action.Pod.String(),
		Node:      action.Node,
		Timestamp: at,
	}
	if err := sess.DB(auditDatabase).C(scheduler).Insert(entry); err != nil {
		log.V(2).Info("Failed to write audit record", "error", err, "entry", entry)
	}
}
