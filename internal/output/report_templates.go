package output

// htmlTemplate is the self-contained page rendered by GenerateHTMLString.
const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.TestName}} - Journey Load Report</title>
    <style>
        :root {
            --bg-primary: #ffffff;
            --bg-secondary: #f8fafc;
            --bg-card: #ffffff;
            --text-primary: #1e293b;
            --text-secondary: #64748b;
            --border-color: #e2e8f0;
            --accent-primary: #3b82f6;
            --accent-success: #22c55e;
            --accent-error: #ef4444;
            --shadow: 0 1px 3px rgba(0, 0, 0, 0.1);
        }

        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            background-color: var(--bg-secondary);
            color: var(--text-primary);
            line-height: 1.6;
        }

        .container {
            max-width: 1100px;
            margin: 0 auto;
            padding: 2rem;
        }

        header {
            margin-bottom: 2rem;
        }

        header h1 {
            font-size: 1.75rem;
            font-weight: 700;
        }

        header .meta {
            color: var(--text-secondary);
            font-size: 0.9rem;
        }

        .cards {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(180px, 1fr));
            gap: 1rem;
            margin-bottom: 2rem;
        }

        .card {
            background: var(--bg-card);
            border: 1px solid var(--border-color);
            border-radius: 8px;
            padding: 1.25rem;
            box-shadow: var(--shadow);
        }

        .card .label {
            color: var(--text-secondary);
            font-size: 0.8rem;
            text-transform: uppercase;
            letter-spacing: 0.05em;
        }

        .card .value {
            font-size: 1.5rem;
            font-weight: 700;
        }

        .card .value.pass { color: var(--accent-success); }
        .card .value.fail { color: var(--accent-error); }

        table {
            width: 100%;
            border-collapse: collapse;
            background: var(--bg-card);
            border: 1px solid var(--border-color);
            border-radius: 8px;
            overflow: hidden;
            box-shadow: var(--shadow);
        }

        th, td {
            padding: 0.65rem 1rem;
            text-align: left;
            border-bottom: 1px solid var(--border-color);
            font-size: 0.9rem;
        }

        th {
            background: var(--bg-secondary);
            color: var(--text-secondary);
            font-weight: 600;
            text-transform: uppercase;
            font-size: 0.75rem;
            letter-spacing: 0.05em;
        }

        tr:last-child td { border-bottom: none; }

        td.num { text-align: right; font-variant-numeric: tabular-nums; }
        th.num { text-align: right; }

        .badge {
            display: inline-block;
            padding: 0.1rem 0.5rem;
            border-radius: 9999px;
            font-size: 0.75rem;
            font-weight: 600;
        }

        .badge.pass { background: #dcfce7; color: #166534; }
        .badge.fail { background: #fee2e2; color: #991b1b; }

        h2 {
            font-size: 1.1rem;
            margin: 1.5rem 0 0.75rem;
        }

        footer {
            margin-top: 2rem;
            color: var(--text-secondary);
            font-size: 0.8rem;
        }
    </style>
</head>
<body>
    <div class="container">
        <header>
            <h1>{{.TestName}}</h1>
            <div class="meta">{{.CompanyName}} &middot; {{.Domain}} &middot; run {{.RunID}} &middot; generated {{.GeneratedAt.Format "2006-01-02 15:04:05 MST"}}</div>
        </header>

        <div class="cards">
            <div class="card">
                <div class="label">Journeys</div>
                <div class="value">{{formatNumber .Summary.Journeys}}</div>
            </div>
            <div class="card">
                <div class="label">Passed</div>
                <div class="value pass">{{formatNumber .Summary.Passed}}</div>
            </div>
            <div class="card">
                <div class="label">Failed</div>
                <div class="value {{if gt .Summary.Failed 0}}fail{{end}}">{{formatNumber .Summary.Failed}}</div>
            </div>
            <div class="card">
                <div class="label">Pass Rate</div>
                <div class="value">{{percent .Summary.PassRate}}</div>
            </div>
            <div class="card">
                <div class="label">Journey p95</div>
                <div class="value">{{formatLatency .Summary.JourneyP95}}</div>
            </div>
            <div class="card">
                <div class="label">Wall Clock</div>
                <div class="value">{{formatDuration .Summary.WallClock}}</div>
            </div>
        </div>

        <h2>Journey Steps</h2>
        <table>
            <thead>
                <tr>
                    <th>Step</th>
                    <th>Outcome</th>
                    <th class="num">Runs</th>
                    <th class="num">Failed</th>
                    <th class="num">p50</th>
                    <th class="num">p95</th>
                    <th class="num">Max</th>
                </tr>
            </thead>
            <tbody>
                {{range .Summary.Steps}}
                <tr>
                    <td>{{.StepName}}</td>
                    <td>{{if gt .Failed 0}}<span class="badge fail">FAIL</span>{{else}}<span class="badge pass">PASS</span>{{end}}</td>
                    <td class="num">{{formatNumber .Count}}</td>
                    <td class="num">{{formatNumber .Failed}}</td>
                    <td class="num">{{formatLatency .P50}}</td>
                    <td class="num">{{formatLatency .P95}}</td>
                    <td class="num">{{formatLatency .Max}}</td>
                </tr>
                {{end}}
            </tbody>
        </table>

        <footer>
            Journey latencies: p50 {{formatLatency .Summary.JourneyP50}} &middot; p95 {{formatLatency .Summary.JourneyP95}} &middot; max {{formatLatency .Summary.JourneyMax}}
        </footer>
    </div>
</body>
</html>
`
