package constants

const (
	GetTeamRosterStats = `
	SELECT t.id, t.name, t.tag, t.region, t.captain_discord_id, t.logo_url, t.created_at,
	       COUNT(m.team_id)                                   AS member_count,
	       COUNT(m.team_id) FILTER (WHERE m.role = 'manager') AS manager_count,
	       COUNT(m.team_id) FILTER (WHERE m.role = 'coach')   AS coach_count
	FROM teams t
	LEFT JOIN team_members m ON m.team_id = t.id
	WHERE t.id = $1
	GROUP BY t.id
	`

	ListTeamsByRegion = `
	SELECT t.id, t.name, t.tag, t.region, t.captain_discord_id, t.logo_url, t.created_at,
	       COUNT(m.team_id)                                   AS member_count,
	       COUNT(m.team_id) FILTER (WHERE m.role = 'manager') AS manager_count,
	       COUNT(m.team_id) FILTER (WHERE m.role = 'coach')   AS coach_count
	FROM teams t
	LEFT JOIN team_members m ON m.team_id = t.id
	WHERE $1 = '' OR t.region = $1
	GROUP BY t.id
	ORDER BY t.created_at
	`
)
