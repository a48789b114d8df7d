package rsc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"rscreport/internal/metrics"
)

// 变更结果状态。
const (
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
)

// MutationResult 是单次变更请求的结果记录。RequestStatus 只反映传输层
// 结果；应用层错误单独放在 ErrorMessage，调用方需要同时检查两者，
// 或直接使用 Succeeded。
type MutationResult struct {
	RequestStatus string `json:"requestStatus"`
	ObjectType    string `json:"objectType,omitempty"`
	ObjectID      string `json:"objectId,omitempty"`
	SLAID         string `json:"slaId,omitempty"`
	Operation     string `json:"operation"`
	JobID         string `json:"jobId,omitempty"`
	ErrorMessage  string `json:"errorMessage,omitempty"`
}

// Succeeded 在传输成功且无应用层错误时为 true。
func (r MutationResult) Succeeded() bool {
	return r.RequestStatus == StatusSuccess && r.ErrorMessage == ""
}

// ObjectType 标识可按需打快照的对象类型。
type ObjectType int

const (
	ObjectVMwareVM ObjectType = iota + 1
	ObjectHyperVVM
	ObjectNutanixVM
	ObjectFileset
	ObjectMSSQLDB
	ObjectOracleDB
	ObjectVolumeGroup
)

var objectTypeNames = map[ObjectType]string{
	ObjectVMwareVM:    "VMwareVM",
	ObjectHyperVVM:    "HyperVVM",
	ObjectNutanixVM:   "NutanixVM",
	ObjectFileset:     "Fileset",
	ObjectMSSQLDB:     "MSSQLDB",
	ObjectOracleDB:    "OracleDB",
	ObjectVolumeGroup: "VolumeGroup",
}

// String 返回对象类型名。
func (t ObjectType) String() string {
	if name, ok := objectTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ObjectType(%d)", int(t))
}

// ParseObjectType 根据名字解析对象类型。
func ParseObjectType(name string) (ObjectType, error) {
	for t, n := range objectTypeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("不支持的对象类型: %s", name)
}

// mutationSpec 定义一种变更的请求构造方式与响应解析路径。
type mutationSpec struct {
	operation string
	text      string
	buildVars func(objectID, slaID string) map[string]any
	jobIDPath []string
}

func snapshotVars(objectID, slaID string) map[string]any {
	return map[string]any{
		"input": map[string]any{
			"id":     objectID,
			"config": map[string]any{"slaId": slaID},
		},
	}
}

// snapshotSpecs 按对象类型列出按需快照的变更定义。新增类型只需补一行。
var snapshotSpecs = map[ObjectType]mutationSpec{
	ObjectVMwareVM: {
		operation: "TakeVSphereVMOnDemandSnapshot",
		text: `mutation TakeVSphereVMOnDemandSnapshot($input: VsphereOnDemandSnapshotInput!) {
  vsphereOnDemandSnapshot(input: $input) { id status }
}`,
		buildVars: snapshotVars,
		jobIDPath: []string{"vsphereOnDemandSnapshot", "id"},
	},
	ObjectHyperVVM: {
		operation: "TakeHypervVMOnDemandSnapshot",
		text: `mutation TakeHypervVMOnDemandSnapshot($input: HypervOnDemandSnapshotInput!) {
  hypervOnDemandSnapshot(input: $input) { id status }
}`,
		buildVars: snapshotVars,
		jobIDPath: []string{"hypervOnDemandSnapshot", "id"},
	},
	ObjectNutanixVM: {
		operation: "TakeNutanixVMOnDemandSnapshot",
		text: `mutation TakeNutanixVMOnDemandSnapshot($input: CreateOnDemandNutanixBackupInput!) {
  createOnDemandNutanixBackup(input: $input) { id status }
}`,
		buildVars: snapshotVars,
		jobIDPath: []string{"createOnDemandNutanixBackup", "id"},
	},
	ObjectFileset: {
		operation: "TakeFilesetOnDemandSnapshot",
		text: `mutation TakeFilesetOnDemandSnapshot($input: CreateFilesetSnapshotInput!) {
  createFilesetSnapshot(input: $input) { id status }
}`,
		buildVars: snapshotVars,
		jobIDPath: []string{"createFilesetSnapshot", "id"},
	},
	ObjectMSSQLDB: {
		operation: "TakeMssqlOnDemandBackup",
		text: `mutation TakeMssqlOnDemandBackup($input: CreateOnDemandMssqlBackupInput!) {
  createOnDemandMssqlBackup(input: $input) { id status }
}`,
		buildVars: snapshotVars,
		jobIDPath: []string{"createOnDemandMssqlBackup", "id"},
	},
	ObjectOracleDB: {
		operation: "TakeOracleOnDemandBackup",
		text: `mutation TakeOracleOnDemandBackup($input: TakeOnDemandOracleDatabaseSnapshotInput!) {
  takeOnDemandOracleDatabaseSnapshot(input: $input) { id status }
}`,
		buildVars: snapshotVars,
		jobIDPath: []string{"takeOnDemandOracleDatabaseSnapshot", "id"},
	},
	ObjectVolumeGroup: {
		operation: "TakeVolumeGroupOnDemandBackup",
		text: `mutation TakeVolumeGroupOnDemandBackup($input: CreateOnDemandVolumeGroupBackupInput!) {
  createOnDemandVolumeGroupBackup(input: $input) { id status }
}`,
		buildVars: snapshotVars,
		jobIDPath: []string{"createOnDemandVolumeGroupBackup", "id"},
	},
}

// SupportedSnapshotTypes 返回快照变更支持的对象类型集合。
func SupportedSnapshotTypes() []ObjectType {
	types := make([]ObjectType, 0, len(snapshotSpecs))
	for t := range snapshotSpecs {
		types = append(types, t)
	}
	return types
}

// TakeOnDemandSnapshot 对指定对象发起按需快照。不重试，也不等待任务完成，
// 调用方需自行轮询对应的查询接口确认结果。
func (c *Client) TakeOnDemandSnapshot(ctx context.Context, t ObjectType, objectID, slaID string) MutationResult {
	result := MutationResult{
		ObjectType: t.String(),
		ObjectID:   objectID,
		SLAID:      slaID,
	}
	spec, ok := snapshotSpecs[t]
	if !ok {
		result.RequestStatus = StatusFailed
		result.ErrorMessage = fmt.Sprintf("不支持的对象类型: %s", t)
		return result
	}
	result.Operation = spec.operation
	c.mutate(ctx, spec, spec.buildVars(objectID, slaID), &result)
	return result
}

// PauseProtection 暂停或恢复对象的保护。
func (c *Client) PauseProtection(ctx context.Context, objectIDs []string, pause bool) MutationResult {
	operation := "PauseProtection"
	if !pause {
		operation = "ResumeProtection"
	}
	result := MutationResult{Operation: operation}
	if len(objectIDs) > 0 {
		result.ObjectID = objectIDs[0]
	}
	spec := mutationSpec{
		operation: operation,
		text: `mutation PauseProtection($input: PauseSlaInput!) {
  pauseSla(input: $input) { success }
}`,
	}
	vars := map[string]any{
		"input": map[string]any{
			"objectIds":          objectIDs,
			"shouldPauseSla":     pause,
			"clusterUuid":        "",
			"applyToDescendants": true,
		},
	}
	c.mutate(ctx, spec, vars, &result)
	return result
}

// UnmountLiveMount 结束一个 vSphere Live Mount。
func (c *Client) UnmountLiveMount(ctx context.Context, mountID string, force bool) MutationResult {
	result := MutationResult{
		Operation: "DeleteVSphereLiveMount",
		ObjectID:  mountID,
	}
	spec := mutationSpec{
		operation: "DeleteVSphereLiveMount",
		text: `mutation DeleteVSphereLiveMount($input: DeleteVsphereLiveMountInput!) {
  deleteVsphereLiveMount(input: $input) { id status }
}`,
		jobIDPath: []string{"deleteVsphereLiveMount", "id"},
	}
	vars := map[string]any{
		"input": map[string]any{
			"livemountId": mountID,
			"force":       force,
		},
	}
	c.mutate(ctx, spec, vars, &result)
	return result
}

// mutate 执行单次变更并填充结果。传输失败记为 FAILED；应用层错误不改变
// RequestStatus，只写入 ErrorMessage。
func (c *Client) mutate(ctx context.Context, spec mutationSpec, vars map[string]any, result *MutationResult) {
	data, err := c.Do(ctx, Query{
		OperationName: spec.operation,
		Text:          spec.text,
		Variables:     vars,
	})

	var gqlErr *GraphQLError
	switch {
	case err == nil:
		result.RequestStatus = StatusSuccess
	case errors.As(err, &gqlErr):
		result.RequestStatus = StatusSuccess
		result.ErrorMessage = joinMessages(gqlErr.Messages)
	default:
		result.RequestStatus = StatusFailed
		result.ErrorMessage = err.Error()
	}

	if result.Succeeded() {
		metrics.MutationsTotal.WithLabelValues(StatusSuccess).Inc()
	} else {
		metrics.MutationsTotal.WithLabelValues(StatusFailed).Inc()
	}

	if result.RequestStatus == StatusSuccess && len(spec.jobIDPath) > 0 {
		result.JobID = extractString(data, spec.jobIDPath)
	}
}

func joinMessages(msgs []string) string {
	if len(msgs) == 0 {
		return ""
	}
	out := msgs[0]
	for _, m := range msgs[1:] {
		out += "; " + m
	}
	return out
}

// extractString 按路径从 data 中取出字符串，取不到返回空串。
func extractString(data json.RawMessage, path []string) string {
	if len(data) == 0 {
		return ""
	}
	var current any
	if err := json.Unmarshal(data, &current); err != nil {
		return ""
	}
	for _, part := range path {
		obj, ok := current.(map[string]any)
		if !ok {
			return ""
		}
		current, ok = obj[part]
		if !ok {
			return ""
		}
	}
	s, _ := current.(string)
	return s
}
