package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vidyaloop/segment-service/models"
)

// GraphQLGateway is the remote variant of Gateway. Each operation is
// serialized into a single GraphQL request against a Hasura-style
// endpoint; the response envelope is unwrapped and embedded errors are
// translated into the same taxonomy as native store failures.
type GraphQLGateway struct {
	endpoint    string
	adminSecret string
	client      *http.Client
}

// NewGraphQLGateway creates the remote gateway variant. timeout bounds
// every single request; zero falls back to 30s.
func NewGraphQLGateway(endpoint, adminSecret string, timeout time.Duration) Gateway {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GraphQLGateway{
		endpoint:    endpoint,
		adminSecret: adminSecret,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors,omitempty"`
}

// do executes one GraphQL request and decodes the data payload into out.
// No retries: a single attempt either succeeds or surfaces a classified
// error.
func (g *GraphQLGateway) do(ctx context.Context, op, query string, variables map[string]any, out any) error {
	payload, err := json.Marshal(gqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.adminSecret != "" {
		req.Header.Set("X-Hasura-Admin-Secret", g.adminSecret)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s: %w: http status %d", op, ErrBackendUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrBackendUnavailable, err)
	}

	var envelope gqlResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("%s: %w: malformed response: %v", op, ErrRemoteExecution, err)
	}

	if len(envelope.Errors) > 0 {
		return classifyRemoteErrors(op, envelope.Errors)
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("%s: %w: malformed data payload: %v", op, ErrRemoteExecution, err)
		}
	}
	return nil
}

// classifyRemoteErrors maps an embedded error envelope onto the gateway
// taxonomy so callers see the same kinds as with the direct store.
func classifyRemoteErrors(op string, errs []gqlError) error {
	first := errs[0]
	switch first.Extensions.Code {
	case "constraint-violation", "unique-violation":
		return fmt.Errorf("%s: %w: %s", op, ErrConstraintViolation, first.Message)
	case "not-found":
		return fmt.Errorf("%s: %w: %s", op, ErrNotFound, first.Message)
	}
	msg := strings.ToLower(first.Message)
	if strings.Contains(msg, "uniqueness violation") || strings.Contains(msg, "foreign key violation") {
		return fmt.Errorf("%s: %w: %s", op, ErrConstraintViolation, first.Message)
	}
	return fmt.Errorf("%s: %w: %s", op, ErrRemoteExecution, first.Message)
}

// mentorBoolExp translates a normalized predicate into a Hasura boolean
// expression.
func mentorBoolExp(pred models.MentorPredicate) map[string]any {
	where := map[string]any{}
	if len(pred.SegmentIDs) > 0 {
		where["mentor_segments"] = map[string]any{"segment_id": map[string]any{"_in": pred.SegmentIDs}}
	}
	if len(pred.PhoneNumbers) > 0 {
		where["phone_no"] = map[string]any{"_in": pred.PhoneNumbers}
	}
	if pred.Actors.Constrained() {
		where["actor_id"] = map[string]any{"_in": pred.Actors.Values()}
	}
	if pred.Districts.Constrained() {
		where["district_id"] = map[string]any{"_in": pred.Districts.Values()}
	}
	if pred.Blocks.Constrained() {
		where["block_id"] = map[string]any{"_in": pred.Blocks.Values()}
	}
	if pred.Schools.Constrained() {
		where["teacher_schools"] = map[string]any{"school_udise": map[string]any{"_in": pred.Schools.Values()}}
	}
	if pred.RequireToken {
		where["mentor_token"] = map[string]any{"token": map[string]any{"_neq": ""}}
	}
	return where
}

type gqlMentorRow struct {
	ID          int64  `json:"id"`
	PhoneNo     string `json:"phone_no"`
	OfficerName string `json:"officer_name"`
	ActorID     int32  `json:"actor_id"`
	DistrictID  int32  `json:"district_id"`
	BlockID     *int32 `json:"block_id"`
	MentorToken *struct {
		Token string `json:"token"`
	} `json:"mentor_token"`
}

const queryMentorsGQL = `query Mentors($where: mentors_bool_exp!, $limit: Int, $offset: Int) {
  mentors(where: $where, order_by: {id: asc}, limit: $limit, offset: $offset) {
    id phone_no officer_name actor_id district_id block_id
    mentor_token { token }
  }
}`

func (g *GraphQLGateway) QueryMentors(ctx context.Context, pred models.MentorPredicate, limit, offset int) ([]*models.Mentor, error) {
	variables := map[string]any{
		"where":  mentorBoolExp(pred),
		"offset": offset,
	}
	if limit > 0 {
		variables["limit"] = limit
	}

	var data struct {
		Mentors []gqlMentorRow `json:"mentors"`
	}
	if err := g.do(ctx, "query mentors", queryMentorsGQL, variables, &data); err != nil {
		return nil, err
	}

	mentors := make([]*models.Mentor, 0, len(data.Mentors))
	for _, row := range data.Mentors {
		m := &models.Mentor{
			ID:          row.ID,
			PhoneNo:     row.PhoneNo,
			OfficerName: row.OfficerName,
			ActorID:     row.ActorID,
			DistrictID:  row.DistrictID,
			BlockID:     row.BlockID,
		}
		if row.MentorToken != nil {
			m.Token = &models.MentorToken{MentorID: row.ID, Token: row.MentorToken.Token}
		}
		mentors = append(mentors, m)
	}
	return mentors, nil
}

const countMentorsGQL = `query CountMentors($where: mentors_bool_exp!) {
  mentors_aggregate(where: $where) {
    aggregate { count }
  }
}`

func (g *GraphQLGateway) CountMentors(ctx context.Context, pred models.MentorPredicate) (int64, error) {
	var data struct {
		MentorsAggregate struct {
			Aggregate struct {
				Count int64 `json:"count"`
			} `json:"aggregate"`
		} `json:"mentors_aggregate"`
	}
	variables := map[string]any{"where": mentorBoolExp(pred)}
	if err := g.do(ctx, "count mentors", countMentorsGQL, variables, &data); err != nil {
		return 0, err
	}
	return data.MentorsAggregate.Aggregate.Count, nil
}

const createSegmentGQL = `mutation CreateSegment($name: String!, $description: String!) {
  insert_segments_one(object: {name: $name, description: $description}) {
    id name description created_at updated_at
  }
}`

func (g *GraphQLGateway) CreateSegment(ctx context.Context, name, description string) (*models.Segment, error) {
	var data struct {
		Segment *models.Segment `json:"insert_segments_one"`
	}
	variables := map[string]any{"name": name, "description": description}
	if err := g.do(ctx, "create segment", createSegmentGQL, variables, &data); err != nil {
		return nil, err
	}
	if data.Segment == nil {
		return nil, fmt.Errorf("create segment: %w: empty mutation result", ErrRemoteExecution)
	}
	return data.Segment, nil
}

const listSegmentsGQL = `query Segments {
  segments(order_by: {id: asc}) {
    id name description created_at updated_at
  }
}`

func (g *GraphQLGateway) ListSegments(ctx context.Context) ([]*models.Segment, error) {
	var data struct {
		Segments []*models.Segment `json:"segments"`
	}
	if err := g.do(ctx, "list segments", listSegmentsGQL, nil, &data); err != nil {
		return nil, err
	}
	return data.Segments, nil
}

const createMembershipsGQL = `mutation CreateMemberships($objects: [mentor_segments_insert_input!]!) {
  insert_mentor_segments(objects: $objects) {
    affected_rows
  }
}`

func (g *GraphQLGateway) CreateMemberships(ctx context.Context, rows []*models.MentorSegment) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	objects := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		objects = append(objects, map[string]any{"mentor_id": r.MentorID, "segment_id": r.SegmentID})
	}

	var data struct {
		Insert struct {
			AffectedRows int64 `json:"affected_rows"`
		} `json:"insert_mentor_segments"`
	}
	variables := map[string]any{"objects": objects}
	if err := g.do(ctx, "create memberships", createMembershipsGQL, variables, &data); err != nil {
		return 0, err
	}
	return data.Insert.AffectedRows, nil
}

const upsertSegmentBotGQL = `mutation UpsertSegmentBot($object: segment_bots_insert_input!) {
  insert_segment_bots_one(object: $object, on_conflict: {constraint: uk_segment_bots_segment_bot, update_columns: [bot_id]}) {
    id segment_id bot_id created_at
  }
}`

func (g *GraphQLGateway) UpsertSegmentBot(ctx context.Context, segmentID int64, botID uuid.UUID) (*models.SegmentBot, error) {
	var data struct {
		Row *models.SegmentBot `json:"insert_segment_bots_one"`
	}
	variables := map[string]any{
		"object": map[string]any{"segment_id": segmentID, "bot_id": botID.String()},
	}
	if err := g.do(ctx, "upsert segment bot", upsertSegmentBotGQL, variables, &data); err != nil {
		return nil, err
	}
	if data.Row == nil {
		return nil, fmt.Errorf("upsert segment bot: %w: empty mutation result", ErrRemoteExecution)
	}
	return data.Row, nil
}

const insertSegmentBotsGQL = `mutation InsertSegmentBots($objects: [segment_bots_insert_input!]!) {
  insert_segment_bots(objects: $objects) {
    affected_rows
  }
}`

func (g *GraphQLGateway) InsertSegmentBots(ctx context.Context, rows []*models.SegmentBot) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	objects := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		objects = append(objects, map[string]any{"segment_id": r.SegmentID, "bot_id": r.BotID.String()})
	}

	var data struct {
		Insert struct {
			AffectedRows int64 `json:"affected_rows"`
		} `json:"insert_segment_bots"`
	}
	variables := map[string]any{"objects": objects}
	if err := g.do(ctx, "insert segment bots", insertSegmentBotsGQL, variables, &data); err != nil {
		return 0, err
	}
	return data.Insert.AffectedRows, nil
}

const deleteSegmentBotsGQL = `mutation DeleteSegmentBots($botIds: [uuid!]!) {
  delete_segment_bots(where: {bot_id: {_in: $botIds}}) {
    affected_rows
  }
}`

func (g *GraphQLGateway) DeleteSegmentBots(ctx context.Context, botIDs []uuid.UUID) (int64, error) {
	if len(botIDs) == 0 {
		return 0, nil
	}
	ids := make([]string, 0, len(botIDs))
	for _, id := range botIDs {
		ids = append(ids, id.String())
	}

	var data struct {
		Delete struct {
			AffectedRows int64 `json:"affected_rows"`
		} `json:"delete_segment_bots"`
	}
	variables := map[string]any{"botIds": ids}
	if err := g.do(ctx, "delete segment bots", deleteSegmentBotsGQL, variables, &data); err != nil {
		return 0, err
	}
	return data.Delete.AffectedRows, nil
}

const listActorsGQL = `query Actors {
  actors(order_by: {id: asc}) { id name }
}`

func (g *GraphQLGateway) ListActors(ctx context.Context) ([]models.LookupOption, error) {
	var data struct {
		Actors []struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"actors"`
	}
	if err := g.do(ctx, "list actors", listActorsGQL, nil, &data); err != nil {
		return nil, err
	}
	options := make([]models.LookupOption, 0, len(data.Actors))
	for _, a := range data.Actors {
		options = append(options, models.LookupOption{ID: a.ID, Label: a.Name})
	}
	return options, nil
}

const listDistrictsByActorsGQL = `query DistrictsByActors($actorIds: [Int!]!) {
  mentors(distinct_on: district_id, order_by: {district_id: asc}, where: {actor_id: {_in: $actorIds}}) {
    district { id name }
  }
}`

func (g *GraphQLGateway) ListDistrictsByActors(ctx context.Context, actorIDs []int32) ([]models.LookupOption, error) {
	if len(actorIDs) == 0 {
		return nil, nil
	}
	var data struct {
		Mentors []struct {
			District struct {
				ID   int64  `json:"id"`
				Name string `json:"name"`
			} `json:"district"`
		} `json:"mentors"`
	}
	variables := map[string]any{"actorIds": actorIDs}
	if err := g.do(ctx, "list districts by actors", listDistrictsByActorsGQL, variables, &data); err != nil {
		return nil, err
	}
	options := make([]models.LookupOption, 0, len(data.Mentors))
	for _, m := range data.Mentors {
		options = append(options, models.LookupOption{ID: m.District.ID, Label: m.District.Name})
	}
	return options, nil
}

const listBlocksByDistrictsGQL = `query BlocksByDistricts($districtIds: [Int!]!) {
  blocks(where: {district_id: {_in: $districtIds}}, order_by: {id: asc}) { id name }
}`

func (g *GraphQLGateway) ListBlocksByDistricts(ctx context.Context, districtIDs []int32) ([]models.LookupOption, error) {
	if len(districtIDs) == 0 {
		return nil, nil
	}
	var data struct {
		Blocks []struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"blocks"`
	}
	variables := map[string]any{"districtIds": districtIDs}
	if err := g.do(ctx, "list blocks by districts", listBlocksByDistrictsGQL, variables, &data); err != nil {
		return nil, err
	}
	options := make([]models.LookupOption, 0, len(data.Blocks))
	for _, b := range data.Blocks {
		options = append(options, models.LookupOption{ID: b.ID, Label: b.Name})
	}
	return options, nil
}

const listSchoolsGQL = `query Schools($where: school_list_bool_exp!) {
  school_list(where: $where, order_by: {udise: asc}) { udise name }
}`

func (g *GraphQLGateway) ListSchools(ctx context.Context, districtIDs, blockIDs []int32) ([]models.SchoolOption, error) {
	where := map[string]any{}
	if len(districtIDs) > 0 {
		where["district_id"] = map[string]any{"_in": districtIDs}
	}
	if len(blockIDs) > 0 {
		where["block_id"] = map[string]any{"_in": blockIDs}
	}

	var data struct {
		Schools []struct {
			Udise string `json:"udise"`
			Name  string `json:"name"`
		} `json:"school_list"`
	}
	variables := map[string]any{"where": where}
	if err := g.do(ctx, "list schools", listSchoolsGQL, variables, &data); err != nil {
		return nil, err
	}
	options := make([]models.SchoolOption, 0, len(data.Schools))
	for _, s := range data.Schools {
		options = append(options, models.SchoolOption{ID: s.Udise, Label: s.Name})
	}
	return options, nil
}
