package workflow

import (
	"fmt"
	"strconv"

	"institute-system/internal/entities"
	apperrors "institute-system/pkg/errors"
	"institute-system/pkg/treestore"
)

// FlowPolicy — политика согласования для типа заявки: упорядоченная
// цепочка ролей (первая — роль заявителя), коллекция в дереве хранилища
// и формат легаси-статусов.
type FlowPolicy struct {
	Roles      []entities.Role
	Collection string
	Suffixed   bool
	// PerUser: документы лежат под documentRequests/{userId}/{id}.
	PerUser bool
}

const (
	collectionEquipment   = "equipmentRequests"
	collectionMaintenance = "maintenanceRequests"
	collectionDocument    = "documentRequests"
)

// Политики фиксируются при создании заявки и дальше не меняются,
// даже если институт перенастроит цепочку для новых заявок.
var flowPolicies = map[entities.RequestType]FlowPolicy{
	entities.TypeWorkshop: {
		Roles:      []entities.Role{"workshop_instructor", "asst_store", "registrar"},
		Collection: collectionEquipment,
	},
	entities.TypeLab: {
		Roles:      []entities.Role{"lab_assistant", "asst_store", "registrar"},
		Collection: collectionEquipment,
	},
	entities.TypeLibraryStock: {
		Roles:      []entities.Role{"librarian", "asst_store", "registrar"},
		Collection: collectionEquipment,
	},
	entities.TypePlumbingStock: {
		Roles:      []entities.Role{"plumber", "technician", "registrar"},
		Collection: collectionMaintenance,
	},
	entities.TypeElectrical: {
		Roles:      []entities.Role{"electrician", "technician", "registrar"},
		Collection: collectionMaintenance,
	},
	entities.TypeDocument: {
		Roles:      []entities.Role{"clerk", "registrar", "principal"},
		Collection: collectionDocument,
		Suffixed:   true,
		PerUser:    true,
	},
}

// Collections перечисляет все коллекции заявок в дереве хранилища.
// Используется проекциями дашборда для обхода поддеревьев института.
func Collections() []string {
	return []string{collectionEquipment, collectionMaintenance, collectionDocument}
}

func PolicyFor(t entities.RequestType) (FlowPolicy, error) {
	policy, ok := flowPolicies[t]
	if !ok {
		return FlowPolicy{}, apperrors.NewInvalidInputError("неизвестный тип заявки: %q", t)
	}
	return policy, nil
}

// CollectionPath — корень коллекции заявок института в дереве хранилища.
func CollectionPath(instituteID uint64, collection string) string {
	return treestore.JoinPath("institutes", strconv.FormatUint(instituteID, 10), collection)
}

// RequestPath — полный путь узла заявки.
func RequestPath(req *entities.Request) (string, error) {
	policy, err := PolicyFor(req.Type)
	if err != nil {
		return "", err
	}
	root := CollectionPath(req.InstituteID, policy.Collection)
	if policy.PerUser {
		if req.CreatedBy == "" {
			return "", fmt.Errorf("у документной заявки %s не указан автор", req.ID)
		}
		return treestore.JoinPath(root, req.CreatedBy, req.ID), nil
	}
	return treestore.JoinPath(root, req.ID), nil
}

func roleIndex(flow []entities.Role, role entities.Role) int {
	for i, r := range flow {
		if r == role {
			return i
		}
	}
	return -1
}
